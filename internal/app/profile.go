package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jsamuelsen/quotehub-sync/internal/domain"
	"github.com/jsamuelsen/quotehub-sync/internal/ports"
)

// ProfileServiceConfig contains dependencies for the profile service.
type ProfileServiceConfig struct {
	Tree     ports.RemoteTree
	Session  ports.SessionContext
	Likes    *LikeStateManager
	Activity *ActivityLogger
	Logger   *slog.Logger
	Now      func() time.Time
}

// ProfileService maintains users/{uid} and builds the profile summary.
type ProfileService struct {
	tree     ports.RemoteTree
	session  ports.SessionContext
	likes    *LikeStateManager
	activity *ActivityLogger
	logger   *slog.Logger
	now      func() time.Time
}

// ActivityItem is an activity entry with a relative age label.
type ActivityItem struct {
	domain.ActivityLogEntry

	TimeAgo string `json:"timeAgo"`
}

// ProfileSummary is what the profile page shows.
type ProfileSummary struct {
	User        domain.User          `json:"user"`
	TotalLiked  int                  `json:"totalLiked"`
	LikedToday  int                  `json:"likedToday"`
	MemberSince time.Time            `json:"memberSince"`
	Counts      domain.CategoryCount `json:"categoryCounts"`
	Recent      []ActivityItem       `json:"recentActivity"`
}

// summaryRecent is the number of activity entries in a summary.
const summaryRecent = 5

// NewProfileService creates the profile service.
// Panics if Tree, Likes, or Activity is nil.
func NewProfileService(cfg ProfileServiceConfig) *ProfileService {
	if cfg.Tree == nil || cfg.Likes == nil || cfg.Activity == nil {
		panic("ProfileService: Tree, Likes and Activity are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &ProfileService{
		tree:     cfg.Tree,
		session:  sessionOrAnonymous(cfg.Session),
		likes:    cfg.Likes,
		activity: cfg.Activity,
		logger:   logger.With(slog.String("component", "app.ProfileService")),
		now:      now,
	}
}

// Bootstrap creates users/{uid} on first sign-in and refreshes lastLogin
// afterwards.
func (p *ProfileService) Bootstrap(ctx context.Context, email string) (domain.User, error) {
	uid, err := requireUser(ctx, p.session, "bootstrap profile")
	if err != nil {
		return domain.User{}, err
	}

	now := domain.Millis(p.now())
	user := domain.User{ID: uid, Email: email, CreatedAt: now, LastLogin: now}

	created, err := p.tree.SetIfAbsent(ctx, domain.UserPath(uid), user)
	if err != nil {
		return domain.User{}, fmt.Errorf("creating user record: %w", err)
	}

	if created {
		loggerFor(ctx, p.logger).InfoContext(ctx, "user record created")
		return user, nil
	}

	existing, _, err := p.readUser(ctx, uid)
	if err != nil {
		return domain.User{}, err
	}

	existing.LastLogin = now
	if existing.Email == "" {
		existing.Email = email
	}

	if err := p.tree.Set(ctx, domain.UserPath(uid), existing); err != nil {
		return domain.User{}, fmt.Errorf("updating last login: %w", err)
	}

	return existing, nil
}

// Summary returns like totals, likes since UTC midnight, membership date,
// and the last five activity entries newest first. The three reads run in
// parallel.
func (p *ProfileService) Summary(ctx context.Context) (ProfileSummary, error) {
	uid, err := requireUser(ctx, p.session, "read profile")
	if err != nil {
		return ProfileSummary{}, err
	}

	type userRead struct {
		user  domain.User
		found bool
	}

	u, likes, recent, err := Parallel3(ctx,
		func(ctx context.Context) (userRead, error) {
			user, found, err := p.readUser(ctx, uid)
			return userRead{user, found}, err
		},
		func(ctx context.Context) (LikeSnapshot, error) {
			return p.likes.Likes(ctx)
		},
		func(ctx context.Context) ([]domain.ActivityLogEntry, error) {
			return p.activity.Recent(ctx, summaryRecent)
		},
	)
	if err != nil {
		return ProfileSummary{}, fmt.Errorf("building profile summary: %w", err)
	}

	now := p.now()
	today := domain.Millis(StartOfDayUTC(now))

	likedToday := 0
	for _, q := range likes.Likes.Quotes() {
		if q.Timestamp >= today {
			likedToday++
		}
	}

	memberSince := now
	if u.found && u.user.CreatedAt > 0 {
		memberSince = domain.FromMillis(u.user.CreatedAt).UTC()
	}

	items := make([]ActivityItem, len(recent))
	for i, e := range recent {
		items[i] = ActivityItem{ActivityLogEntry: e, TimeAgo: TimeAgo(now, domain.FromMillis(e.Timestamp))}
	}

	return ProfileSummary{
		User:        u.user,
		TotalLiked:  likes.Likes.Len(),
		LikedToday:  likedToday,
		MemberSince: memberSince,
		Counts:      likes.Counts,
		Recent:      items,
	}, nil
}

func (p *ProfileService) readUser(ctx context.Context, uid string) (domain.User, bool, error) {
	snap, err := p.tree.Get(ctx, domain.UserPath(uid))
	if err != nil {
		return domain.User{}, false, fmt.Errorf("reading user record: %w", err)
	}

	if len(snap.Value) == 0 {
		return domain.User{ID: uid}, false, nil
	}

	var u domain.User
	if err := snap.Decode(&u); err != nil {
		return domain.User{}, false, err
	}

	if u.ID == "" {
		u.ID = uid
	}

	return u, true, nil
}

// StartOfDayUTC returns midnight UTC of t's UTC date.
func StartOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TimeAgo renders the age of then relative to now in whole days, hours,
// or minutes, or "Just now" under a minute.
func TimeAgo(now, then time.Time) string {
	diff := now.Sub(then)

	plural := func(n int64, unit string) string {
		s := strconv.FormatInt(n, 10) + " " + unit
		if n > 1 {
			s += "s"
		}

		return s + " ago"
	}

	switch {
	case diff >= 24*time.Hour:
		return plural(int64(diff/(24*time.Hour)), "day")
	case diff >= time.Hour:
		return plural(int64(diff/time.Hour), "hour")
	case diff >= time.Minute:
		return plural(int64(diff/time.Minute), "minute")
	default:
		return "Just now"
	}
}
