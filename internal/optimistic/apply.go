package optimistic

// Apply flips liked and moves the count one step in the same direction.
// Counts are clamped at zero.
func Apply(item Item) Item {
	item.Liked = !item.Liked

	if item.Liked {
		item.LikesCount++
	} else if item.LikesCount > 0 {
		item.LikesCount--
	}

	return item
}

// Invert undoes Apply. For any item whose count agrees with its liked flag
// (liked implies at least one like) Invert(Apply(x)) == x.
func Invert(item Item) Item {
	return Apply(item)
}
