package models

// UserConfig holds the persisted per-user settings. It is stored as JSON
// under key user_<userID> and labeled users:user_<userID>, which makes the
// set of registered users enumerable by label prefix.
//
// Org and AccessKey are pointers so that a partial update marshals only the
// fields being set - the store merges the JSON into the existing record
// instead of replacing it, so configuring org and key in either order ends
// with both present.
type UserConfig struct {
	UserID    string  `json:"user_id"`
	Org       *string `json:"org,omitempty"`
	AccessKey *string `json:"key,omitempty"`
}
