// Package keycodec serializes typed composite keys — tuples of fixed
// discriminator bytes interleaved with variable UTF-8 text fields — into a
// single lexicographically ordered byte string, and back.
//
// Encoding is injective and order-preserving: bytewise order of encoded
// keys equals the logical order of the source tuples. Every family also
// exposes Prefix/Suffix bounds that bracket every member of that family
// (within an outer scope) for exclusive range scans.
package keycodec

import "fmt"

type fieldKind int

const (
	fixedField fieldKind = iota
	textField
)

type field struct {
	kind  fieldKind
	fixed string
}

func fixed(s string) field { return field{kind: fixedField, fixed: s} }
func text() field          { return field{kind: textField} }

// Family bundles a name with its fixed discriminator layout and the
// positions of its variable text fields, so every family shares one
// encode/decode/prefix/suffix implementation.
type Family struct {
	Name   string
	fields []field
}

func newFamily(name string, fields ...field) Family {
	return Family{Name: name, fields: fields}
}

// textCount reports how many Text fields a family has.
func (f Family) textCount() int {
	n := 0
	for _, fd := range f.fields {
		if fd.kind == textField {
			n++
		}
	}
	return n
}

// Families supplied by SPEC_FULL §4, additive to the original Nt fixture.
var (
	// Ns{ns}: a bare namespace record. Encodes as "/*ns\0".
	Ns = newFamily("Ns", fixed("/"), fixed("*"), text())

	// Db{ns,db}: a database within a namespace. Encodes as "/*ns\0*db\0".
	Db = newFamily("Db", fixed("/"), fixed("*"), text(), fixed("*"), text())

	// Nt{ns,tk}: a namespace token, the original conformance fixture.
	// Encodes as "/*ns\0!nttk\0".
	Nt = newFamily("Nt", fixed("/"), fixed("*"), text(), fixed("!nt"), text())

	// Ix{ns,db,tb,ix}: a secondary index definition within a table.
	// Encodes as "/*ns\0*db\0*tb\0+ix\0".
	Ix = newFamily("Ix", fixed("/"), fixed("*"), text(), fixed("*"), text(), fixed("*"), text(), fixed("+"), text())
)

func (f Family) checkArity(n int, want int) error {
	if n != want {
		return fmt.Errorf("keycodec: family %s wants %d text field(s), got %d", f.Name, want, n)
	}
	return nil
}
