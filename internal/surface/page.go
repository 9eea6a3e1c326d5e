package surface

// Live text elements of one surface, in the order they were added.
type page struct {
	elems map[string]*Element
	order []string
}

func newPage() *page {
	return &page{elems: make(map[string]*Element)}
}

func (p *page) add(e Element) error {
	if _, ok := p.elems[e.Ident]; ok {
		return alreadyExists(e.Ident)
	}
	p.elems[e.Ident] = &e
	p.order = append(p.order, e.Ident)
	return nil
}

// Replaces the text of an element and returns the element as it was before.
func (p *page) update(ident, text string) (Element, error) {
	e, ok := p.elems[ident]
	if !ok {
		return Element{}, notFound(ident)
	}
	old := *e
	e.Text = text
	return old, nil
}

// Removes an element and returns it.
func (p *page) remove(ident string) (Element, error) {
	e, ok := p.elems[ident]
	if !ok {
		return Element{}, notFound(ident)
	}
	delete(p.elems, ident)
	for i, id := range p.order {
		if id == ident {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return *e, nil
}

func (p *page) clear() {
	p.elems = make(map[string]*Element)
	p.order = nil
}

// Returns a copy of the live elements in draw order.
func (p *page) elements() []Element {
	out := make([]Element, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.elems[id])
	}
	return out
}
