package typelayout

// Kind is the DWARF-free analogue of gocore.Kind: the small, closed
// set of field shapes this collector understands. Authoring richer
// descriptor catalogs from real type systems is out of scope; Kind
// only needs to support what computeLayout must place.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt32
	KindLong
	KindDecimal
	KindRef
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindInt32:
		return "Int32"
	case KindLong:
		return "Long"
	case KindDecimal:
		return "Decimal"
	case KindRef:
		return "Ref"
	case KindStruct:
		return "Struct"
	default:
		return "None"
	}
}

// TypeClass distinguishes heap-allocatable Classes from inline Structs.
type TypeClass uint8

const (
	Class TypeClass = iota
	Struct
)

func (c TypeClass) String() string {
	if c == Struct {
		return "Struct"
	}
	return "Class"
}
