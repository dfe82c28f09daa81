package repository

import (
	"time"

	"carmarket/internal/store"
)

// steppingClock returns times one second apart, starting at base.
func steppingClock(base time.Time) clock {
	n := 0
	return func() time.Time {
		t := base.Add(time.Duration(n) * time.Second)
		n++
		return t
	}
}

var testEpoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func newTestListings() (*listingRepository, store.Store) {
	s := store.NewMemoryStore()
	r := NewListingRepository(s).(*listingRepository)
	r.now = steppingClock(testEpoch)
	return r, s
}

func newTestConversations() (*conversationRepository, store.Store) {
	s := store.NewMemoryStore()
	r := NewConversationRepository(s).(*conversationRepository)
	r.now = steppingClock(testEpoch)
	return r, s
}

func newTestCommunity() (*communityRepository, store.Store) {
	s := store.NewMemoryStore()
	r := NewCommunityRepository(s).(*communityRepository)
	r.now = steppingClock(testEpoch)
	return r, s
}
