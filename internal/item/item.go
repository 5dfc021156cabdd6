package item

// Category is one of the five collectible classes an item belongs to.
type Category int

const (
	CategoryLiteMetal Category = iota
	CategoryYoko
	CategoryChristineP
	CategoryKarlGitter
	CategoryKrypto
)

// NumCategories is the fixed number of categories.
const NumCategories = 5

func (c Category) String() string {
	switch c {
	case CategoryLiteMetal:
		return "LITE_METAL"
	case CategoryYoko:
		return "YOKO"
	case CategoryChristineP:
		return "CHRISTINE_P"
	case CategoryKarlGitter:
		return "KARL_GITTER"
	case CategoryKrypto:
		return "KRYPTO"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether c is one of the five categories.
func (c Category) Valid() bool {
	return c >= 0 && c < NumCategories
}

// Mechanism is the auction protocol tag carried by an item.
type Mechanism int

const (
	Open  Mechanism = iota // Open ascending, anyone may raise at any time
	Once                   // Single circuit ascending, one chance per seat
	Blind                  // Sealed bid, all seats submit concurrently
	Price                  // Fixed price offered clockwise
	Pair                   // Paired item wrapper
)

// NumMechanisms is the fixed number of mechanisms.
const NumMechanisms = 5

func (m Mechanism) String() string {
	switch m {
	case Open:
		return "OPEN"
	case Once:
		return "ONCE"
	case Blind:
		return "BLIND"
	case Price:
		return "PRICE"
	case Pair:
		return "PAIR"
	default:
		return "UNKNOWN"
	}
}

// Item is an immutable collectible. Items are compared by value.
type Item struct {
	Category  Category  `json:"category" cbor:"1,keyasint"`
	Mechanism Mechanism `json:"mechanism" cbor:"2,keyasint"`
}

// New returns an item of the given category and mechanism.
func New(c Category, m Mechanism) Item {
	return Item{Category: c, Mechanism: m}
}

func (i Item) String() string {
	return i.Category.String() + "/" + i.Mechanism.String()
}

// IsPair reports whether the item carries the paired-item wrapper tag.
func (i Item) IsPair() bool {
	return i.Mechanism == Pair
}
