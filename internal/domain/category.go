package domain

// Category is a user-owned label describing how a time interval was spent.
type Category struct {
	ID     int64
	UserID int64
	Name   string
}

// DefaultCategoryNames are seeded for every user at registration time.
// The set is fixed; there is no add/remove flow.
var DefaultCategoryNames = []string{
	"Work",
	"TimeKiller",
	"Food",
	"Walk",
	"Workout",
	"Sleep",
}
