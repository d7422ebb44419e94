package bt

// Inverter flips Success and Failure of its single child; Running passes through.
type Inverter struct {
	baseNode
	child Node
}

func NewInverter(name string) *Inverter { return &Inverter{baseNode: baseNode{name: name}} }

func (d *Inverter) Kind() Kind { return KindInverter }

// AddChild attaches the only child. A second call fails and keeps the first child.
func (d *Inverter) AddChild(child Node) error {
	if child == nil {
		return ErrNilNode
	}
	if d.child != nil {
		return ErrInverterMultipleChildren
	}
	d.child = child
	return nil
}

// Child returns the wrapped node, or nil before one is attached.
func (d *Inverter) Child() Node { return d.child }

func (d *Inverter) Tick(t TickContext) (Status, error) {
	if d.child == nil {
		return StatusFailure, ErrInverterNoChild
	}
	st, err := d.child.Tick(t)
	if err != nil {
		return st, err
	}
	switch st {
	case StatusSuccess:
		return StatusFailure, nil
	case StatusFailure:
		return StatusSuccess, nil
	default:
		return st, nil
	}
}
