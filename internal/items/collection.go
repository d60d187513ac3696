package items

// AddItem adds an item to a collection
func AddItem(items *[]*Item, item *Item) {
	*items = append(*items, item)
}

// TakeCollectibles removes every collectible from the collection and returns
// them in their original order. Hazards stay behind.
func TakeCollectibles(items *[]*Item) []*Item {
	var taken []*Item
	kept := (*items)[:0]
	for _, item := range *items {
		if item.Category() == CategoryCollectible {
			taken = append(taken, item)
		} else {
			kept = append(kept, item)
		}
	}
	for i := len(kept); i < len(*items); i++ {
		(*items)[i] = nil
	}
	*items = kept
	return taken
}

// HasKind checks if an item of the given kind exists in a collection
func HasKind(items []*Item, kind Kind) bool {
	for _, item := range items {
		if item.Kind == kind {
			return true
		}
	}
	return false
}

// CountKind counts items of the given kind.
func CountKind(items []*Item, kind Kind) int {
	n := 0
	for _, item := range items {
		if item.Kind == kind {
			n++
		}
	}
	return n
}

// FindPillar returns the pillar item in the collection, if any.
func FindPillar(items []*Item) (*Item, bool) {
	for _, item := range items {
		if item.Kind == KindPillar {
			return item, true
		}
	}
	return nil, false
}
