package scene

import "fmt"

// Handle refers to a prim owned by a document. Placement callbacks receive
// one for every instance they customise.
type Handle struct {
	doc  *Document
	path string
}

func (h Handle) Path() string {
	return h.path
}

func (h Handle) Document() *Document {
	return h.doc
}

func (h Handle) Valid() bool {
	return h.doc != nil && h.path != ""
}

func (h Handle) Prim() (Prim, error) {
	if !h.Valid() {
		return Prim{}, fmt.Errorf("invalid prim handle")
	}
	prim, ok, err := h.doc.Prim(h.path)
	if err != nil {
		return Prim{}, err
	}
	if !ok {
		return Prim{}, fmt.Errorf("prim %s does not exist", h.path)
	}
	return prim, nil
}

func (h Handle) SetAttribute(key, value string) error {
	if !h.Valid() {
		return fmt.Errorf("%w: invalid prim handle", ErrDocumentWrite)
	}
	return h.doc.update(h.path, func(prim *Prim) {
		if prim.Attributes == nil {
			prim.Attributes = make(map[string]string, 4)
		}
		prim.Attributes[key] = value
	})
}

func (h Handle) Attribute(key string) (string, bool) {
	prim, err := h.Prim()
	if err != nil {
		return "", false
	}
	value, ok := prim.Attributes[key]
	return value, ok
}
