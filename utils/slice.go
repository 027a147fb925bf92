package utils

// UniqueStrings removes duplicates and empty values while keeping first-seen order.
func UniqueStrings(slice []string) []string {
	keys := make(map[string]bool, len(slice))
	list := []string{}
	for _, entry := range slice {
		if entry == "" {
			continue
		}
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}
