package keycodec

import "fmt"

// Encode serializes texts (one per Text field of f, in order) into f's
// composite-key byte string. Fails with ErrInvalidKey if any text field
// contains an embedded 0x00 byte.
func (f Family) Encode(texts ...string) ([]byte, error) {
	if err := f.checkArity(len(texts), f.textCount()); err != nil {
		return nil, err
	}

	var out []byte
	ti := 0
	for _, fd := range f.fields {
		switch fd.kind {
		case fixedField:
			out = append(out, fd.fixed...)
		case textField:
			s := texts[ti]
			ti++
			if err := checkText(s); err != nil {
				return nil, err
			}
			out = append(out, s...)
			out = append(out, 0x00)
		}
	}
	return out, nil
}

// Decode reverses Encode, validating every fixed byte and returning the
// recovered text fields in order. Fails with ErrInvalidKey on any mismatch
// or truncated input.
func (f Family) Decode(key []byte) ([]string, error) {
	texts := make([]string, 0, f.textCount())
	pos := 0
	for _, fd := range f.fields {
		switch fd.kind {
		case fixedField:
			n := len(fd.fixed)
			if pos+n > len(key) || string(key[pos:pos+n]) != fd.fixed {
				return nil, fmt.Errorf("%w: family %s: fixed byte mismatch at offset %d", ErrInvalidKey, f.Name, pos)
			}
			pos += n
		case textField:
			end := pos
			for end < len(key) && key[end] != 0x00 {
				end++
			}
			if end >= len(key) {
				return nil, fmt.Errorf("%w: family %s: unterminated text field at offset %d", ErrInvalidKey, f.Name, pos)
			}
			texts = append(texts, string(key[pos:end]))
			pos = end + 1
		}
	}
	if pos != len(key) {
		return nil, fmt.Errorf("%w: family %s: trailing bytes after offset %d", ErrInvalidKey, f.Name, pos)
	}
	return texts, nil
}

// Prefix returns the exclusive lower scan bound for every member of f whose
// outer-scope text fields (all Text fields but the last) equal texts.
// Every member encoded key K satisfies Prefix(...) < K.
func (f Family) Prefix(texts ...string) ([]byte, error) {
	return f.bound(texts, 0x00)
}

// Suffix returns the exclusive upper scan bound for every member of f whose
// outer-scope text fields (all Text fields but the last) equal texts.
// Every member encoded key K satisfies K < Suffix(...).
func (f Family) Suffix(texts ...string) ([]byte, error) {
	return f.bound(texts, 0xFF)
}

func (f Family) bound(texts []string, terminator byte) ([]byte, error) {
	want := f.textCount() - 1
	if want < 0 {
		want = 0
	}
	if err := f.checkArity(len(texts), want); err != nil {
		return nil, err
	}

	var out []byte
	ti := 0
	lastTextSeen := 0
	total := f.textCount()
	for _, fd := range f.fields {
		switch fd.kind {
		case fixedField:
			out = append(out, fd.fixed...)
		case textField:
			lastTextSeen++
			if lastTextSeen == total {
				// This is the family's own discriminating field; its value
				// is exactly what Prefix/Suffix brackets, so it is omitted.
				out = append(out, terminator)
				return out, nil
			}
			s := texts[ti]
			ti++
			if err := checkText(s); err != nil {
				return nil, err
			}
			out = append(out, s...)
			out = append(out, 0x00)
		}
	}
	// A family with zero Text fields has no meaningful bound; append the
	// terminator directly so callers still get a well-formed bracket.
	out = append(out, terminator)
	return out, nil
}

func checkText(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] == 0x00 {
			return fmt.Errorf("%w: text field contains embedded 0x00 at byte %d", ErrInvalidKey, i)
		}
	}
	return nil
}
