package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/breezy-team/breezy-sub003/compact"
	"github.com/breezy-team/breezy-sub003/hashset"
	"github.com/breezy-team/breezy-sub003/internal/pcg"
)

func newBenchCommand() *cobra.Command {
	var (
		n     int
		dirs  int
		files int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Intern synthetic path keys and report deduplication",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 1 || dirs < 1 || files < 1 {
				return errors.New("bench: --n, --dirs and --files must be positive")
			}
			return bench(cmd.OutOrStdout(), n, dirs, files, seed)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&n, "n", 100000, "number of keys to intern")
	flags.IntVar(&dirs, "dirs", 64, "distinct directory names")
	flags.IntVar(&files, "files", 256, "distinct file names per directory")
	flags.Uint64Var(&seed, "seed", 0, "random seed")

	return cmd
}

func bench(out io.Writer, n, dirs, files int, seed uint64) error {
	p := pcg.New(seed, 0)
	before := compact.PoolStats()
	held := make([]*compact.Tuple, 0, n)
	defer func() {
		for _, t := range held {
			t.Release()
		}
	}()

	start := time.Now()
	for i := 0; i < n; i++ {
		d, f := p.Intn(dirs), p.Intn(files)
		t, err := compact.Intern(fmt.Sprintf("dir%03d", d), fmt.Sprintf("file%04d.txt", f))
		if err != nil {
			return err
		}
		held = append(held, t)
	}
	elapsed := time.Since(start)

	pool := compact.PoolStats()
	distinct := pool.Used - before.Used
	fmt.Fprintf(out, "interned: %d keys in %s (%s/key)\n", n, elapsed, elapsed/time.Duration(n))
	fmt.Fprintf(out, "distinct: %d (dedup %.2fx)\n", distinct, float64(n)/float64(max(distinct, 1)))
	printPool(out, "pool:", pool)
	return nil
}

func printPool(out io.Writer, label string, s hashset.Stats) {
	fmt.Fprintf(out, "%-9s used %d, fill %d, tombstones %d, capacity %d\n",
		label, s.Used, s.Fill, s.Tombstones, s.Capacity)
}
