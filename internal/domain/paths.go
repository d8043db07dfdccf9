package domain

import "strings"

// Tree layout.
//
//	quotes/{quoteId}
//	users/{userId}
//	users/{userId}/likedQuotes/{quoteId}
//	users/{userId}/customQuotes/{quoteId}
//	users/{userId}/activityLog/{logId}
//	meta/seeded/{category}
const (
	QuotesRoot = "quotes"
	UsersRoot  = "users"
	SeededRoot = "meta/seeded"

	likedQuotesSegment  = "likedQuotes"
	customQuotesSegment = "customQuotes"
	activityLogSegment  = "activityLog"
)

// JoinPath joins path segments with "/".
func JoinPath(segments ...string) string {
	return strings.Join(segments, "/")
}

// QuotePath returns quotes/{id}.
func QuotePath(id string) string {
	return JoinPath(QuotesRoot, id)
}

// UserPath returns users/{uid}.
func UserPath(uid string) string {
	return JoinPath(UsersRoot, uid)
}

// LikedQuotesPath returns users/{uid}/likedQuotes.
func LikedQuotesPath(uid string) string {
	return JoinPath(UsersRoot, uid, likedQuotesSegment)
}

// LikedQuotePath returns users/{uid}/likedQuotes/{id}.
func LikedQuotePath(uid, id string) string {
	return JoinPath(LikedQuotesPath(uid), id)
}

// CustomQuotesPath returns users/{uid}/customQuotes.
func CustomQuotesPath(uid string) string {
	return JoinPath(UsersRoot, uid, customQuotesSegment)
}

// CustomQuotePath returns users/{uid}/customQuotes/{id}.
func CustomQuotePath(uid, id string) string {
	return JoinPath(CustomQuotesPath(uid), id)
}

// ActivityLogPath returns users/{uid}/activityLog.
func ActivityLogPath(uid string) string {
	return JoinPath(UsersRoot, uid, activityLogSegment)
}

// SeededMarkerPath returns meta/seeded/{category}.
func SeededMarkerPath(category string) string {
	return JoinPath(SeededRoot, category)
}
