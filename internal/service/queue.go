package service

// Queue slice helpers. They never modify the input slice in place.

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeAt(ids []string, index int) []string {
	if index < 0 || index >= len(ids) {
		return ids
	}
	out := make([]string, 0, len(ids)-1)
	out = append(out, ids[:index]...)
	return append(out, ids[index+1:]...)
}

func insertAt(ids []string, index int, id string) []string {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	return append(out, ids[index:]...)
}
