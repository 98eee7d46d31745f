package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/neilotoole/slogt"
)

var testNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store *teststore, stats *teststats) *Service {
	t.Helper()
	if store == nil {
		store = &teststore{}
	}
	if stats == nil {
		stats = &teststats{}
	}
	store.T = t
	stats.T = t
	return &Service{
		Logger:   slogt.New(t),
		Store:    store,
		Stats:    stats,
		Networks: &testnetworks{T: t},
		Now:      func() time.Time { return testNow },
	}
}

func TestService_AddStatus(t *testing.T) {
	alice := Principal{Actor: 1, Name: "Alice"}

	tests := []struct {
		name      string
		principal Principal
		readOnly  bool
		sportID   int64
		teamID    int64
		text      string
		store     *teststore
		wantErr   error
		wantIncs  []int64
	}{
		{
			name:      "OK",
			principal: alice,
			sportID:   2,
			text:      "  Hello  ",
			store: &teststore{
				insertStatus: func(t *testing.T, u StatusUpdate) (StatusUpdate, error) {
					want := StatusUpdate{Author: 1, SportID: 2, Text: "Hello", CreatedAt: testNow}
					if diff := cmp.Diff(want, u); diff != "" {
						t.Errorf("InsertStatus() mismatch (-want +got):\n%s", diff)
					}
					u.ID = 101
					return u, nil
				},
			},
			wantIncs: []int64{1},
		},
		{
			name:      "ReadOnly",
			principal: alice,
			readOnly:  true,
			text:      "Hello",
			wantErr:   ErrReadOnly,
		},
		{
			name:    "Anonymous",
			text:    "Hello",
			wantErr: ErrForbidden,
		},
		{
			name:      "Blocked",
			principal: Principal{Actor: 1, Blocked: true},
			text:      "Hello",
			wantErr:   ErrForbidden,
		},
		{
			name:      "EmptyText",
			principal: alice,
			text:      "   ",
			wantErr:   ErrValidation,
		},
		{
			name:      "NegativeTeam",
			principal: alice,
			teamID:    -1,
			text:      "Hello",
			wantErr:   ErrValidation,
		},
		{
			name:      "StoreError",
			principal: alice,
			text:      "Hello",
			store: &teststore{
				insertStatus: func(t *testing.T, u StatusUpdate) (StatusUpdate, error) {
					return StatusUpdate{}, errors.New("connection refused")
				},
			},
			wantErr: errors.New("insert status: connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &teststats{}
			s := newTestService(t, tt.store, stats)
			s.ReadOnly = func() bool { return tt.readOnly }

			u, err := s.AddStatus(context.Background(), tt.principal, tt.sportID, tt.teamID, tt.text)
			checkErr(t, err, tt.wantErr)
			if tt.wantErr == nil && u.ID != 101 {
				t.Errorf("Got ID %d, want 101", u.ID)
			}
			if diff := cmp.Diff(tt.wantIncs, stats.incs); diff != "" {
				t.Errorf("IncStatusCount() calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestService_AddStatus_statsError(t *testing.T) {
	store := &teststore{
		insertStatus: func(t *testing.T, u StatusUpdate) (StatusUpdate, error) {
			u.ID = 7
			return u, nil
		},
	}
	stats := &teststats{incErr: errors.New("redis down")}
	s := newTestService(t, store, stats)

	u, err := s.AddStatus(context.Background(), Principal{Actor: 3}, 0, 0, "Hi")
	if err != nil {
		t.Fatalf("AddStatus() error = %v, want nil", err)
	}
	if u.ID != 7 {
		t.Errorf("Got ID %d, want 7", u.ID)
	}
}

func TestService_DeleteStatus(t *testing.T) {
	post := &StatusUpdate{ID: 101, Author: 1, SportID: 2}

	tests := []struct {
		name        string
		principal   Principal
		readOnly    bool
		id          int64
		status      *StatusUpdate
		wantErr     error
		wantDeleted bool
		wantDecs    []int64
	}{
		{
			name:        "Author",
			principal:   Principal{Actor: 1},
			id:          101,
			status:      post,
			wantDeleted: true,
			wantDecs:    []int64{1},
		},
		{
			name:        "Privileged",
			principal:   Principal{Actor: 9, Rights: []string{RightDeleteStatusUpdates}},
			id:          101,
			status:      post,
			wantDeleted: true,
			// The author's count is decremented, not the deleter's.
			wantDecs: []int64{1},
		},
		{
			name:      "OtherUser",
			principal: Principal{Actor: 2},
			id:        101,
			status:    post,
			wantErr:   ErrForbidden,
		},
		{
			name:      "Anonymous",
			principal: Principal{},
			id:        101,
			status:    post,
			wantErr:   ErrForbidden,
		},
		{
			name:      "Missing",
			principal: Principal{Actor: 1},
			id:        404,
		},
		{
			name:      "ReadOnly",
			principal: Principal{Actor: 1},
			readOnly:  true,
			id:        101,
			status:    post,
			wantErr:   ErrReadOnly,
		},
		{
			name:      "InvalidID",
			principal: Principal{Actor: 1},
			id:        0,
			wantErr:   ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deleted := false
			store := &teststore{
				getStatus: func(t *testing.T, id, viewer int64) (*StatusUpdate, error) {
					if tt.status == nil || id != tt.status.ID {
						return nil, nil
					}
					return tt.status, nil
				},
				deleteStatus: func(t *testing.T, id int64) (*StatusUpdate, error) {
					deleted = true
					return tt.status, nil
				},
			}
			stats := &teststats{}
			s := newTestService(t, store, stats)
			s.ReadOnly = func() bool { return tt.readOnly }

			err := s.DeleteStatus(context.Background(), tt.principal, tt.id)
			checkErr(t, err, tt.wantErr)
			if deleted != tt.wantDeleted {
				t.Errorf("Got deleted %t, want %t", deleted, tt.wantDeleted)
			}
			if diff := cmp.Diff(tt.wantDecs, stats.decs); diff != "" {
				t.Errorf("DecStatusCount() calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestService_DeleteStatus_idempotent(t *testing.T) {
	mem := newMemstore()
	stats := &teststats{}
	s := newTestService(t, nil, stats)
	s.Store = mem
	ctx := context.Background()
	alice := Principal{Actor: 1}

	u, err := s.AddStatus(ctx, alice, 0, 0, "Hello")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := s.DeleteStatus(ctx, alice, u.ID); err != nil {
			t.Fatalf("DeleteStatus() #%d error = %v", i+1, err)
		}
	}
	if got := stats.counts[1]; got != 0 {
		t.Errorf("Got status count %d after create and delete, want 0", got)
	}
	if diff := cmp.Diff([]int64{1}, stats.decs); diff != "" {
		t.Errorf("DecStatusCount() calls mismatch (-want +got):\n%s", diff)
	}
}

func TestService_AddStatusVote(t *testing.T) {
	post := &StatusUpdate{ID: 101, Author: 1}

	tests := []struct {
		name       string
		principal  Principal
		readOnly   bool
		statusID   int64
		score      int
		voted      bool
		conflict   bool
		wantErr    error
		wantVote   bool
		wantInsert bool
	}{
		{
			name:       "OK",
			principal:  Principal{Actor: 2},
			statusID:   101,
			score:      1,
			wantVote:   true,
			wantInsert: true,
		},
		{
			name:       "Downvote",
			principal:  Principal{Actor: 2},
			statusID:   101,
			score:      -1,
			wantVote:   true,
			wantInsert: true,
		},
		{
			name:      "Self",
			principal: Principal{Actor: 1},
			statusID:  101,
			score:     1,
		},
		{
			name:      "Anonymous",
			principal: Principal{},
			statusID:  101,
			score:     1,
		},
		{
			name:      "AlreadyVoted",
			principal: Principal{Actor: 2},
			statusID:  101,
			score:     1,
			voted:     true,
		},
		{
			name:       "LostRace",
			principal:  Principal{Actor: 2},
			statusID:   101,
			score:      1,
			conflict:   true,
			wantInsert: true,
		},
		{
			name:      "MissingStatus",
			principal: Principal{Actor: 2},
			statusID:  404,
			score:     1,
		},
		{
			name:      "BadScore",
			principal: Principal{Actor: 2},
			statusID:  101,
			score:     2,
			wantErr:   ErrValidation,
		},
		{
			name:      "ReadOnly",
			principal: Principal{Actor: 2},
			readOnly:  true,
			statusID:  101,
			score:     1,
			wantErr:   ErrReadOnly,
		},
		{
			name:      "Blocked",
			principal: Principal{Actor: 2, Blocked: true},
			statusID:  101,
			score:     1,
			wantErr:   ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inserted := false
			store := &teststore{
				getStatus: func(t *testing.T, id, viewer int64) (*StatusUpdate, error) {
					if id != post.ID {
						return nil, nil
					}
					u := *post
					u.Voted = tt.voted
					return &u, nil
				},
				insertVote: func(t *testing.T, v Vote) (*Vote, error) {
					inserted = true
					want := Vote{Voter: tt.principal.Actor, StatusUpdateID: tt.statusID, Score: tt.score, VotedAt: testNow}
					if diff := cmp.Diff(want, v); diff != "" {
						t.Errorf("InsertVote() mismatch (-want +got):\n%s", diff)
					}
					if tt.conflict {
						return nil, nil
					}
					v.ID = 5
					return &v, nil
				},
			}
			s := newTestService(t, store, nil)
			s.ReadOnly = func() bool { return tt.readOnly }

			v, err := s.AddStatusVote(context.Background(), tt.principal, tt.statusID, tt.score)
			checkErr(t, err, tt.wantErr)
			if got := v != nil; got != tt.wantVote {
				t.Errorf("Got vote %v, want vote %t", v, tt.wantVote)
			}
			if inserted != tt.wantInsert {
				t.Errorf("Got inserted %t, want %t", inserted, tt.wantInsert)
			}
		})
	}
}

func TestService_StatusMessages(t *testing.T) {
	tests := []struct {
		name       string
		author     int64
		sportID    int64
		teamID     int64
		limit      int
		page       int
		teams      []int64
		wantFilter Filter
		wantLimit  int
		wantOffset int
	}{
		{
			name:       "Author",
			author:     1,
			limit:      25,
			page:       2,
			wantFilter: Filter{Author: 1, Viewer: 9},
			wantLimit:  25,
			wantOffset: 25,
		},
		{
			name:       "SportNetwork",
			sportID:    2,
			limit:      10,
			page:       0,
			teams:      []int64{7, 8},
			wantFilter: Filter{SportID: 2, SportTeams: []int64{7, 8}, Viewer: 9},
			wantLimit:  10,
			wantOffset: 0,
		},
		{
			name:       "Team",
			sportID:    2,
			teamID:     7,
			limit:      10,
			page:       3,
			wantFilter: Filter{SportID: 2, TeamID: 7, Viewer: 9},
			wantLimit:  10,
			wantOffset: 20,
		},
		{
			name:       "NoLimit",
			limit:      0,
			page:       4,
			wantFilter: Filter{Viewer: 9},
			wantLimit:  0,
			wantOffset: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &teststore{
				listStatuses: func(t *testing.T, f Filter, limit, offset int) ([]StatusUpdate, error) {
					if diff := cmp.Diff(tt.wantFilter, f); diff != "" {
						t.Errorf("ListStatuses() filter mismatch (-want +got):\n%s", diff)
					}
					if limit != tt.wantLimit || offset != tt.wantOffset {
						t.Errorf("Got limit %d offset %d, want %d %d", limit, offset, tt.wantLimit, tt.wantOffset)
					}
					return []StatusUpdate{{ID: 1}}, nil
				},
			}
			s := newTestService(t, store, nil)
			s.Networks = &testnetworks{
				T: t,
				sportTeams: func(t *testing.T, sportID int64) ([]int64, error) {
					if sportID != tt.sportID {
						t.Errorf("Got sport %d, want %d", sportID, tt.sportID)
					}
					return tt.teams, nil
				},
			}

			us, err := s.StatusMessages(context.Background(), Principal{Actor: 9}, tt.author, tt.sportID, tt.teamID, tt.limit, tt.page)
			if err != nil {
				t.Fatal(err)
			}
			if len(us) != 1 {
				t.Errorf("Got %d updates, want 1", len(us))
			}
		})
	}
}

func TestService_UserStatusCount(t *testing.T) {
	t.Run("Stats", func(t *testing.T) {
		s := newTestService(t, nil, &teststats{counts: map[int64]int64{1: 12}})
		n, err := s.UserStatusCount(context.Background(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if n != 12 {
			t.Errorf("Got %d, want 12", n)
		}
	})
	t.Run("Fallback", func(t *testing.T) {
		store := &teststore{
			countStatuses: func(t *testing.T, f Filter) (int, error) {
				if f.Author != 1 {
					t.Errorf("Got author %d, want 1", f.Author)
				}
				return 4, nil
			},
		}
		s := newTestService(t, store, &teststats{countErr: errors.New("redis down")})
		n, err := s.UserStatusCount(context.Background(), 1)
		if err != nil {
			t.Fatal(err)
		}
		if n != 4 {
			t.Errorf("Got %d, want 4", n)
		}
	})
}

func TestService_Recount(t *testing.T) {
	store := &teststore{
		countByAuthor: func(t *testing.T) (map[int64]int64, error) {
			return map[int64]int64{1: 3, 2: 5}, nil
		},
	}
	stats := &teststats{}
	s := newTestService(t, store, stats)

	n, err := s.Recount(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Got %d authors, want 2", n)
	}
	if diff := cmp.Diff(map[int64]int64{1: 3, 2: 5}, stats.counts); diff != "" {
		t.Errorf("Counts mismatch (-want +got):\n%s", diff)
	}
}

// TestService_scenario runs a user posting, another user agreeing twice and
// the author deleting the post against an in-memory store.
func TestService_scenario(t *testing.T) {
	ctx := context.Background()
	stats := &teststats{}
	s := newTestService(t, nil, stats)
	mem := newMemstore()
	mem.nextID = 101
	s.Store = mem
	s.Networks = &testnetworks{
		T: t,
		sportTeams: func(t *testing.T, sportID int64) ([]int64, error) {
			return nil, nil
		},
	}
	a := Principal{Actor: 1, Name: "A"}
	b := Principal{Actor: 2, Name: "B"}

	u, err := s.AddStatus(ctx, a, 2, 0, "Hello")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != 101 {
		t.Fatalf("Got ID %d, want 101", u.ID)
	}

	got, err := s.StatusMessage(ctx, a, 101)
	if err != nil {
		t.Fatal(err)
	}
	want := &StatusUpdate{ID: 101, Author: 1, SportID: 2, Text: "Hello", CreatedAt: testNow}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("StatusMessage() mismatch (-want +got):\n%s", diff)
	}

	if n, err := s.NetworkUpdatesCount(ctx, 2, 0); err != nil || n != 1 {
		t.Errorf("NetworkUpdatesCount(2, 0) = %d, %v, want 1", n, err)
	}

	if v, err := s.AddStatusVote(ctx, a, 101, 1); err != nil || v != nil {
		t.Errorf("Self vote = %v, %v, want rejected", v, err)
	}
	if v, err := s.AddStatusVote(ctx, b, 101, 1); err != nil || v == nil {
		t.Fatalf("First vote = %v, %v, want accepted", v, err)
	}
	if v, err := s.AddStatusVote(ctx, b, 101, 1); err != nil || v != nil {
		t.Errorf("Second vote = %v, %v, want rejected", v, err)
	}

	tally, err := s.VoteTally(ctx, 101)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&Tally{Plus: 1}, tally); diff != "" {
		t.Errorf("VoteTally() mismatch (-want +got):\n%s", diff)
	}
	if voted, _ := s.HasVoted(ctx, 2, 101); !voted {
		t.Error("HasVoted(2, 101) = false, want true")
	}
	if len(mem.votes) != 1 {
		t.Errorf("Got %d votes, want 1", len(mem.votes))
	}

	if err := s.DeleteStatus(ctx, a, 101); err != nil {
		t.Fatal(err)
	}
	got, err = s.StatusMessage(ctx, a, 101)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("StatusMessage() after delete = %v, want nil", got)
	}
	if len(mem.votes) != 0 {
		t.Errorf("Got %d votes after delete, want 0", len(mem.votes))
	}
	if stats.counts[1] != 0 {
		t.Errorf("Got status count %d, want 0", stats.counts[1])
	}
}

func checkErr(t *testing.T, got, want error) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("Got error %v, want nil", got)
	case want != nil && got == nil:
		t.Errorf("Got nil error, want %v", want)
	case want != nil && !errors.Is(got, want) && got.Error() != want.Error():
		t.Errorf("Got error %v, want %v", got, want)
	}
}

type teststore struct {
	T             *testing.T
	insertStatus  func(t *testing.T, u StatusUpdate) (StatusUpdate, error)
	deleteStatus  func(t *testing.T, id int64) (*StatusUpdate, error)
	getStatus     func(t *testing.T, id, viewer int64) (*StatusUpdate, error)
	listStatuses  func(t *testing.T, f Filter, limit, offset int) ([]StatusUpdate, error)
	countStatuses func(t *testing.T, f Filter) (int, error)
	countByAuthor func(t *testing.T) (map[int64]int64, error)
	insertVote    func(t *testing.T, v Vote) (*Vote, error)
	hasVoted      func(t *testing.T, voter, statusID int64) (bool, error)
	getTally      func(t *testing.T, statusID int64) (*Tally, error)
	listVoters    func(t *testing.T, statusID int64) ([]Voter, error)
}

func (s *teststore) InsertStatus(_ context.Context, u StatusUpdate) (StatusUpdate, error) {
	return s.insertStatus(s.T, u)
}

func (s *teststore) DeleteStatus(_ context.Context, id int64) (*StatusUpdate, error) {
	return s.deleteStatus(s.T, id)
}

func (s *teststore) GetStatus(_ context.Context, id, viewer int64) (*StatusUpdate, error) {
	return s.getStatus(s.T, id, viewer)
}

func (s *teststore) ListStatuses(_ context.Context, f Filter, limit, offset int) ([]StatusUpdate, error) {
	return s.listStatuses(s.T, f, limit, offset)
}

func (s *teststore) CountStatuses(_ context.Context, f Filter) (int, error) {
	return s.countStatuses(s.T, f)
}

func (s *teststore) CountByAuthor(_ context.Context) (map[int64]int64, error) {
	return s.countByAuthor(s.T)
}

func (s *teststore) InsertVote(_ context.Context, v Vote) (*Vote, error) {
	return s.insertVote(s.T, v)
}

func (s *teststore) HasVoted(_ context.Context, voter, statusID int64) (bool, error) {
	return s.hasVoted(s.T, voter, statusID)
}

func (s *teststore) GetTally(_ context.Context, statusID int64) (*Tally, error) {
	return s.getTally(s.T, statusID)
}

func (s *teststore) ListVoters(_ context.Context, statusID int64) ([]Voter, error) {
	return s.listVoters(s.T, statusID)
}

type teststats struct {
	T        *testing.T
	counts   map[int64]int64
	incs     []int64
	decs     []int64
	incErr   error
	countErr error
}

func (s *teststats) IncStatusCount(_ context.Context, actor int64) error {
	if s.incErr != nil {
		return s.incErr
	}
	if s.counts == nil {
		s.counts = make(map[int64]int64)
	}
	s.incs = append(s.incs, actor)
	s.counts[actor]++
	return nil
}

func (s *teststats) DecStatusCount(_ context.Context, actor int64) error {
	if s.counts == nil {
		s.counts = make(map[int64]int64)
	}
	s.decs = append(s.decs, actor)
	s.counts[actor]--
	return nil
}

func (s *teststats) StatusCount(_ context.Context, actor int64) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.counts[actor], nil
}

func (s *teststats) SetStatusCounts(_ context.Context, counts map[int64]int64) error {
	s.counts = counts
	return nil
}

type testnetworks struct {
	T           *testing.T
	sportTeams  func(t *testing.T, sportID int64) ([]int64, error)
	networkName func(t *testing.T, sportID, teamID int64) (string, error)
}

func (n *testnetworks) SportTeams(_ context.Context, sportID int64) ([]int64, error) {
	return n.sportTeams(n.T, sportID)
}

func (n *testnetworks) NetworkName(_ context.Context, sportID, teamID int64) (string, error) {
	return n.networkName(n.T, sportID, teamID)
}

// memstore is an in-memory Store with the same vote and delete semantics
// as the PostgreSQL store.
type memstore struct {
	nextID   int64
	statuses map[int64]StatusUpdate
	votes    []Vote
}

func newMemstore() *memstore {
	return &memstore{nextID: 1, statuses: make(map[int64]StatusUpdate)}
}

func (m *memstore) InsertStatus(_ context.Context, u StatusUpdate) (StatusUpdate, error) {
	u.ID = m.nextID
	m.nextID++
	m.statuses[u.ID] = u
	return u, nil
}

func (m *memstore) DeleteStatus(_ context.Context, id int64) (*StatusUpdate, error) {
	u, ok := m.statuses[id]
	if !ok {
		return nil, nil
	}
	delete(m.statuses, id)
	kept := m.votes[:0]
	for _, v := range m.votes {
		if v.StatusUpdateID != id {
			kept = append(kept, v)
		}
	}
	m.votes = kept
	return &u, nil
}

func (m *memstore) GetStatus(ctx context.Context, id, viewer int64) (*StatusUpdate, error) {
	u, ok := m.statuses[id]
	if !ok {
		return nil, nil
	}
	u.Voted, _ = m.HasVoted(ctx, viewer, id)
	return &u, nil
}

func (m *memstore) ListStatuses(_ context.Context, f Filter, limit, offset int) ([]StatusUpdate, error) {
	return nil, errors.New("not implemented")
}

func (m *memstore) CountStatuses(_ context.Context, f Filter) (int, error) {
	n := 0
	for _, u := range m.statuses {
		if f.Author > 0 && u.Author != f.Author {
			continue
		}
		if f.SportNetwork() && !(u.SportID == f.SportID && u.TeamID == 0) {
			continue
		}
		if f.TeamID > 0 && u.TeamID != f.TeamID {
			continue
		}
		n++
	}
	return n, nil
}

func (m *memstore) CountByAuthor(_ context.Context) (map[int64]int64, error) {
	out := make(map[int64]int64)
	for _, u := range m.statuses {
		out[u.Author]++
	}
	return out, nil
}

func (m *memstore) InsertVote(ctx context.Context, v Vote) (*Vote, error) {
	if voted, _ := m.HasVoted(ctx, v.Voter, v.StatusUpdateID); voted {
		return nil, nil
	}
	u, ok := m.statuses[v.StatusUpdateID]
	if !ok {
		return nil, nil
	}
	v.ID = int64(len(m.votes) + 1)
	m.votes = append(m.votes, v)
	if v.Score == 1 {
		u.UpvoteCount++
	} else {
		u.DownvoteCount++
	}
	m.statuses[u.ID] = u
	return &v, nil
}

func (m *memstore) HasVoted(_ context.Context, voter, statusID int64) (bool, error) {
	for _, v := range m.votes {
		if v.Voter == voter && v.StatusUpdateID == statusID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memstore) GetTally(_ context.Context, statusID int64) (*Tally, error) {
	u, ok := m.statuses[statusID]
	if !ok {
		return nil, nil
	}
	return &Tally{Plus: u.UpvoteCount, Minus: u.DownvoteCount}, nil
}

func (m *memstore) ListVoters(_ context.Context, statusID int64) ([]Voter, error) {
	var out []Voter
	for i := len(m.votes) - 1; i >= 0; i-- {
		if v := m.votes[i]; v.StatusUpdateID == statusID {
			out = append(out, Voter{Actor: v.Voter, VotedAt: v.VotedAt, Score: v.Score})
		}
	}
	return out, nil
}
