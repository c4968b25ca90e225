package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/common"
	"github.com/dmitrijs2005/taskboard/internal/dbx"
	"github.com/dmitrijs2005/taskboard/internal/server/models"
	"github.com/dmitrijs2005/taskboard/internal/server/ordering"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/boards"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/cards"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/invitations"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/lists"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/revocations"
	"github.com/dmitrijs2005/taskboard/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// txDB is a real handle so WithTx/RunSteps can begin and commit; the fake
// repositories ignore the DBTX they are bound to.
func txDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// memStore is the state shared by all fake repositories.
type memStore struct {
	seq         int
	users       map[string]*models.User
	boards      map[string]*models.Board
	lists       map[string]*models.List
	cards       map[string]*models.Card
	activities  []models.Activity
	invitations []*models.Invitation
	touched     map[string]int
	now         time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*models.User{},
		boards:  map[string]*models.Board{},
		lists:   map[string]*models.List{},
		cards:   map[string]*models.Card{},
		touched: map[string]int{},
		now:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) id(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

type fakeRepoManager struct{ s *memStore }

func (fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (m fakeRepoManager) Users(dbx.DBTX) users.Repository             { return fakeUsers{m.s} }
func (m fakeRepoManager) Boards(dbx.DBTX) boards.Repository           { return fakeBoards{m.s} }
func (m fakeRepoManager) Lists(dbx.DBTX) lists.Repository             { return fakeLists{m.s} }
func (m fakeRepoManager) Cards(dbx.DBTX) cards.Repository             { return fakeCards{m.s} }
func (m fakeRepoManager) Invitations(dbx.DBTX) invitations.Repository { return fakeInvitations{m.s} }
func (fakeRepoManager) Revocations(dbx.DBTX) revocations.Repository   { return nil }

// users

type fakeUsers struct{ s *memStore }

func (r fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if taken, _ := r.IdentityTaken(context.Background(), u.Email, u.UserName, ""); taken {
		return nil, common.ErrIdentityTaken
	}
	c := *u
	c.ID = r.s.id("u")
	c.CreatedAt, c.UpdatedAt = r.s.now, r.s.now
	r.s.users[c.ID] = &c
	out := c
	return &out, nil
}

func (r fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r fakeUsers) GetByLogin(_ context.Context, login string) (*models.User, error) {
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, login) || (u.UserName != "" && strings.EqualFold(u.UserName, login)) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (r fakeUsers) IdentityTaken(_ context.Context, email, username, excludeID string) (bool, error) {
	for id, u := range r.s.users {
		if id == excludeID {
			continue
		}
		if strings.EqualFold(u.Email, email) || (username != "" && strings.EqualFold(u.UserName, username)) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeUsers) List(_ context.Context, _ models.ListQuery, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeUsers) Update(_ context.Context, id string, upd models.ProfileUpdate) error {
	u, ok := r.s.users[id]
	if !ok {
		return common.ErrUserNotFound
	}
	u.Email, u.UserName, u.DisplayName = upd.Email, upd.UserName, upd.DisplayName
	return nil
}

func (r fakeUsers) Delete(_ context.Context, id string) error {
	if _, ok := r.s.users[id]; !ok {
		return common.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

// boards

type fakeBoards struct{ s *memStore }

func copyBoard(b *models.Board) *models.Board {
	c := *b
	c.Members = append([]models.Member(nil), b.Members...)
	return &c
}

func (r fakeBoards) Create(_ context.Context, b *models.Board) (*models.Board, error) {
	c := copyBoard(b)
	c.ID = r.s.id("b")
	c.CreatedAt, c.UpdatedAt = r.s.now, r.s.now
	r.s.boards[c.ID] = c
	return copyBoard(c), nil
}

func (r fakeBoards) Get(_ context.Context, id string) (*models.Board, error) {
	b, ok := r.s.boards[id]
	if !ok {
		return nil, common.ErrBoardNotFound
	}
	return copyBoard(b), nil
}

func (r fakeBoards) ListForMember(_ context.Context, userID string, _ models.ListQuery, limit int) ([]models.Board, error) {
	var out []models.Board
	for _, b := range r.s.boards {
		for _, m := range b.Members {
			if m.UserID == userID {
				out = append(out, *copyBoard(b))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeBoards) Update(_ context.Context, id, title, description string) error {
	b, ok := r.s.boards[id]
	if !ok {
		return common.ErrBoardNotFound
	}
	b.Title, b.Description = title, description
	return nil
}

func (r fakeBoards) Delete(_ context.Context, id string) error {
	if _, ok := r.s.boards[id]; !ok {
		return common.ErrBoardNotFound
	}
	delete(r.s.boards, id)
	return nil
}

func (r fakeBoards) Touch(_ context.Context, id string) error {
	r.s.touched[id]++
	return nil
}

func (r fakeBoards) Members(_ context.Context, id string) ([]models.Member, error) {
	b, ok := r.s.boards[id]
	if !ok {
		return nil, nil
	}
	return append([]models.Member(nil), b.Members...), nil
}

func (r fakeBoards) AddMember(_ context.Context, boardID, userID string, role models.BoardRole, invitedBy string) error {
	b, ok := r.s.boards[boardID]
	if !ok {
		return common.ErrBoardNotFound
	}
	for _, m := range b.Members {
		if m.UserID == userID || (role == models.BoardRoleOwner && m.Role == models.BoardRoleOwner) {
			return common.ErrAlreadyMember
		}
	}
	b.Members = append(b.Members, models.Member{UserID: userID, Role: role, InvitedBy: invitedBy, JoinedAt: r.s.now})
	return nil
}

func (r fakeBoards) CountOwned(_ context.Context, userID string) (int, error) {
	n := 0
	for _, b := range r.s.boards {
		for _, m := range b.Members {
			if m.UserID == userID && m.Role == models.BoardRoleOwner {
				n++
			}
		}
	}
	return n, nil
}

// positions

type memScope struct {
	get func() map[string]*float64
}

func (m memScope) Items(context.Context) ([]ordering.Item, error) {
	var items []ordering.Item
	for id, p := range m.get() {
		items = append(items, ordering.Item{ID: id, Pos: *p})
	}
	ordering.Sort(items)
	return items, nil
}

func (m memScope) MaxPos(ctx context.Context) (float64, bool, error) {
	items, _ := m.Items(ctx)
	if len(items) == 0 {
		return 0, false, nil
	}
	return items[len(items)-1].Pos, true, nil
}

func (m memScope) SetPos(_ context.Context, id string, pos float64) error {
	p, ok := m.get()[id]
	if !ok {
		return common.ErrorNotFound
	}
	*p = pos
	return nil
}

// lists

type fakeLists struct{ s *memStore }

func (r fakeLists) Create(_ context.Context, l *models.List) (*models.List, error) {
	c := *l
	c.ID = r.s.id("l")
	r.s.lists[c.ID] = &c
	out := c
	return &out, nil
}

func (r fakeLists) Get(_ context.Context, boardID, listID string) (*models.List, error) {
	l, ok := r.s.lists[listID]
	if !ok || l.BoardID != boardID {
		return nil, common.ErrListNotFound
	}
	c := *l
	return &c, nil
}

func (r fakeLists) ListByBoard(_ context.Context, boardID string) ([]models.List, error) {
	var out []models.List
	for _, l := range r.s.lists {
		if l.BoardID == boardID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos != out[j].Pos {
			return out[i].Pos < out[j].Pos
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r fakeLists) Rename(ctx context.Context, boardID, listID, title string) error {
	if _, err := r.Get(ctx, boardID, listID); err != nil {
		return err
	}
	r.s.lists[listID].Title = title
	return nil
}

func (r fakeLists) Move(ctx context.Context, boardID, listID string, pos float64) error {
	if _, err := r.Get(ctx, boardID, listID); err != nil {
		return err
	}
	r.s.lists[listID].Pos = pos
	return nil
}

func (r fakeLists) Delete(ctx context.Context, boardID, listID string) error {
	if _, err := r.Get(ctx, boardID, listID); err != nil {
		return err
	}
	delete(r.s.lists, listID)
	return nil
}

func (r fakeLists) Scope(boardID string) ordering.Scope {
	return memScope{get: func() map[string]*float64 {
		out := map[string]*float64{}
		for id, l := range r.s.lists {
			if l.BoardID == boardID {
				out[id] = &l.Pos
			}
		}
		return out
	}}
}

// cards

type fakeCards struct{ s *memStore }

func (r fakeCards) Create(_ context.Context, c *models.Card) (*models.Card, error) {
	n := *c
	n.ID = r.s.id("c")
	n.CreatedAt, n.UpdatedAt = r.s.now, r.s.now
	r.s.cards[n.ID] = &n
	out := n
	return &out, nil
}

func (r fakeCards) Get(_ context.Context, boardID, cardID string) (*models.Card, error) {
	c, ok := r.s.cards[cardID]
	if !ok || c.BoardID != boardID {
		return nil, common.ErrCardNotFound
	}
	out := *c
	out.AssignedTo = append([]string(nil), c.AssignedTo...)
	return &out, nil
}

func (r fakeCards) ListByBoard(_ context.Context, boardID string) ([]models.Card, error) {
	var out []models.Card
	for _, c := range r.s.cards {
		if c.BoardID == boardID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out, nil
}

func (r fakeCards) Update(ctx context.Context, boardID, cardID, title, description string) error {
	if _, err := r.Get(ctx, boardID, cardID); err != nil {
		return err
	}
	r.s.cards[cardID].Title, r.s.cards[cardID].Description = title, description
	return nil
}

func (r fakeCards) Move(ctx context.Context, boardID, cardID, listID string, pos float64) error {
	if _, err := r.Get(ctx, boardID, cardID); err != nil {
		return err
	}
	r.s.cards[cardID].ListID, r.s.cards[cardID].Pos = listID, pos
	return nil
}

func (r fakeCards) Delete(ctx context.Context, boardID, cardID string) error {
	if _, err := r.Get(ctx, boardID, cardID); err != nil {
		return err
	}
	delete(r.s.cards, cardID)
	return nil
}

func (r fakeCards) AddAssignee(_ context.Context, cardID, userID string) error {
	c := r.s.cards[cardID]
	for _, a := range c.AssignedTo {
		if a == userID {
			return nil
		}
	}
	c.AssignedTo = append(c.AssignedTo, userID)
	return nil
}

func (r fakeCards) RemoveAssignee(_ context.Context, cardID, userID string) error {
	c := r.s.cards[cardID]
	kept := c.AssignedTo[:0]
	for _, a := range c.AssignedTo {
		if a != userID {
			kept = append(kept, a)
		}
	}
	c.AssignedTo = kept
	return nil
}

func (r fakeCards) AddActivity(_ context.Context, a *models.Activity) error {
	a.ID = int64(len(r.s.activities) + 1)
	a.CreatedAt = r.s.now
	r.s.activities = append(r.s.activities, *a)
	return nil
}

func (r fakeCards) Activities(_ context.Context, cardID string) ([]models.Activity, error) {
	var out []models.Activity
	for _, a := range r.s.activities {
		if a.CardID == cardID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r fakeCards) Scope(listID string) ordering.Scope {
	return memScope{get: func() map[string]*float64 {
		out := map[string]*float64{}
		for id, c := range r.s.cards {
			if c.ListID == listID {
				out[id] = &c.Pos
			}
		}
		return out
	}}
}

// invitations

type fakeInvitations struct{ s *memStore }

func (r fakeInvitations) Create(_ context.Context, inv *models.Invitation) (*models.Invitation, error) {
	for _, e := range r.s.invitations {
		if e.UserID == inv.UserID && e.Board.ID == inv.Board.ID {
			return nil, common.ErrDuplicateInvitation
		}
	}
	c := *inv
	c.ID = r.s.id("i")
	c.CreatedAt = r.s.now
	c.Board.InvitedBy = c.InvitedBy
	r.s.invitations = append(r.s.invitations, &c)
	out := c
	return &out, nil
}

func (r fakeInvitations) Exists(_ context.Context, userID, boardID string, since time.Time) (bool, error) {
	for _, e := range r.s.invitations {
		if e.UserID == userID && e.Board.ID == boardID && e.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeInvitations) ListForUser(_ context.Context, userID string, since time.Time) ([]models.Invitation, error) {
	var out []models.Invitation
	for _, e := range r.s.invitations {
		if e.UserID == userID && e.CreatedAt.After(since) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r fakeInvitations) Get(_ context.Context, id, userID string, since time.Time) (*models.Invitation, error) {
	for _, e := range r.s.invitations {
		if e.ID == id && e.UserID == userID && e.CreatedAt.After(since) {
			c := *e
			return &c, nil
		}
	}
	return nil, common.ErrInvitationNotFound
}

func (r fakeInvitations) Delete(_ context.Context, id, userID string) error {
	for i, e := range r.s.invitations {
		if e.ID == id && e.UserID == userID {
			r.s.invitations = append(r.s.invitations[:i], r.s.invitations[i+1:]...)
			return nil
		}
	}
	return common.ErrInvitationNotFound
}

func (r fakeInvitations) SweepExpired(_ context.Context, before time.Time) (int64, error) {
	kept := r.s.invitations[:0]
	var n int64
	for _, e := range r.s.invitations {
		if e.CreatedAt.After(before) {
			kept = append(kept, e)
		} else {
			n++
		}
	}
	r.s.invitations = kept
	return n, nil
}

// fixtures

func (s *memStore) addUser(email string) string {
	u, _ := fakeUsers{s}.Create(context.Background(), &models.User{Email: email, Role: models.UserRoleUser})
	return u.ID
}

// sprintBoard creates board "Sprint" owned by owner with the given extra
// members.
func (s *memStore) sprintBoard(owner string, members map[string]models.BoardRole) string {
	b, _ := fakeBoards{s}.Create(context.Background(), &models.Board{Title: "Sprint"})
	_ = fakeBoards{s}.AddMember(context.Background(), b.ID, owner, models.BoardRoleOwner, "")
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		_ = fakeBoards{s}.AddMember(context.Background(), b.ID, id, members[id], owner)
	}
	return b.ID
}
