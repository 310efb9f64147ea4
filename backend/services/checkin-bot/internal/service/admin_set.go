package service

// AdminSet is the static allow-list of admin identities.
type AdminSet map[int64]struct{}

func NewAdminSet(ids []int64) AdminSet {
	set := make(AdminSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s AdminSet) Contains(userID int64) bool {
	_, ok := s[userID]
	return ok
}
