package walk

import "reflect"

// workItem is a pending fill of a registered copy shell.
type workItem struct {
	original reflect.Value
	shell    reflect.Value
	fill     func(shell, original reflect.Value) error
}

func (w workItem) run() error {
	return w.fill(w.shell, w.original)
}

// Dealer hands out pending work in the order it was discovered. Every item is
// handed out exactly once; duplicates are prevented upstream by the identity
// table, which only lets the first visitor of an original schedule its fill.
type Dealer struct {
	needs []workItem
	next  int
}

// Needs queues an item.
func (d *Dealer) Needs(item workItem) {
	d.needs = append(d.needs, item)
}

// NextNeeds pops the oldest queued item.
func (d *Dealer) NextNeeds() (item workItem, ok bool) {
	if d.next == len(d.needs) {
		return
	}

	item = d.needs[d.next]
	d.needs[d.next] = workItem{}
	d.next++

	// reuse the backing array once everything queued so far was handed out
	if d.next == len(d.needs) {
		d.needs, d.next = d.needs[:0], 0
	}

	return item, true
}

// Len returns the number of items still queued.
func (d *Dealer) Len() int {
	return len(d.needs) - d.next
}
