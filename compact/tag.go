package compact

const (
	tagInterned = 1 << iota
	tagAllText
	tagHashed
	tagImmortal
)

// tag is the flag word of a tuple.
type tag uint32

func (t tag) Interned() bool { return t&tagInterned > 0 }
func (t tag) AllText() bool  { return t&tagAllText > 0 }
func (t tag) Hashed() bool   { return t&tagHashed > 0 }
func (t tag) Immortal() bool { return t&tagImmortal > 0 }

func (t tag) WithInterned() tag    { return t | tagInterned }
func (t tag) WithoutInterned() tag { return t &^ tagInterned }
func (t tag) WithAllText() tag     { return t | tagAllText }
func (t tag) WithHashed() tag      { return t | tagHashed }
func (t tag) WithImmortal() tag    { return t | tagImmortal }
