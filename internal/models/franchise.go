package models

// Franchise groups stores under a set of administering users.
type Franchise struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	Admins []AdminRef `json:"admins"`
	Stores []Store    `json:"stores"`
}

// AdminRef is the public view of a franchise administrator.
type AdminRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Store is a single location belonging to a franchise.
type Store struct {
	ID           int64   `json:"id"`
	FranchiseID  int64   `json:"franchiseId"`
	Name         string  `json:"name"`
	TotalRevenue float64 `json:"totalRevenue"`
}

// HasStore reports whether the franchise owns the given store id.
func (f Franchise) HasStore(storeID int64) bool {
	for _, s := range f.Stores {
		if s.ID == storeID {
			return true
		}
	}
	return false
}
