package models

import "sort"

// Selection is the set of photo ids picked in the admin dashboard.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: map[string]struct{}{}}

	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}

	return s
}

func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}

	s.ids[id] = struct{}{}
}

/*
ToggleAll clears the selection when every id in all is already
selected. Otherwise it selects all of them.
*/
func (s *Selection) ToggleAll(all []string) {
	if len(all) > 0 && s.Len() == len(all) && s.ContainsAll(all) {
		s.ids = map[string]struct{}{}
		return
	}

	s.ids = map[string]struct{}{}

	for _, id := range all {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) ContainsAll(ids []string) bool {
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
	}

	return true
}

func (s *Selection) Len() int {
	return len(s.ids)
}

func (s *Selection) Clear() {
	s.ids = map[string]struct{}{}
}

func (s *Selection) IDs() []string {
	result := make([]string, 0, len(s.ids))

	for id := range s.ids {
		result = append(result, id)
	}

	sort.Strings(result)
	return result
}
