package collection

// Collection names of the local store. The set is fixed: the store declares a
// schema for every name at open time, and the sync protocol rejects anything
// outside the Synced list.
const (
	Users         = "users"
	Quests        = "quests"
	Habits        = "habits"
	Projects      = "projects"
	Tasks         = "tasks"
	Notes         = "notes"
	Training      = "training"
	Events        = "events"
	Analytics     = "analytics"
	Settings      = "settings"
	Badges        = "badges"
	Backlinks     = "backlinks"
	Notifications = "notifications"
	APIKeys       = "apikeys"
	Feedback      = "feedback"
)

// Synced is the fixed list of collections exchanged with the remote, in sync
// order. Users, settings and other device-local collections never leave the
// device.
var Synced = []string{
	Quests,
	Habits,
	Projects,
	Tasks,
	Notes,
	Training,
	Events,
	Analytics,
	Badges,
}

// All lists every collection the local store declares.
var All = []string{
	Users,
	Quests,
	Habits,
	Projects,
	Tasks,
	Notes,
	Training,
	Events,
	Analytics,
	Settings,
	Badges,
	Backlinks,
	Notifications,
	APIKeys,
	Feedback,
}

// IsSynced reports whether name belongs to the fixed sync list.
func IsSynced(name string) bool {
	for _, c := range Synced {
		if c == name {
			return true
		}
	}
	return false
}

// Exists reports whether name is a declared collection.
func Exists(name string) bool {
	for _, c := range All {
		if c == name {
			return true
		}
	}
	return false
}
