package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"student-analyzer/internal/domain"
	"student-analyzer/internal/logger"
)

// SocialService manages friend requests and friendships between students.
type SocialService struct {
	store    DocumentStore
	requests RequestStore
	bus      EventBus
	now      func() time.Time
	log      zerolog.Logger
}

func NewSocialService(store DocumentStore, requests RequestStore, bus EventBus) *SocialService {
	return &SocialService{
		store:    store,
		requests: requests,
		bus:      bus,
		now:      time.Now,
		log:      logger.Get().With().Str("component", "social").Logger(),
	}
}

// Search finds other students whose name (case-insensitive) or student id
// contains term.
func (s *SocialService) Search(ctx context.Context, uid, term string) ([]domain.StudentSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.Invalid("q", term, "search term is required")
	}
	docs, err := s.store.List(ctx, CollectionStudents)
	if err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}

	lower := strings.ToLower(term)
	out := make([]domain.StudentSummary, 0)
	for _, doc := range docs {
		if doc.ID == uid {
			continue
		}
		st, ok := StudentFromDocument(doc)
		if !ok {
			continue
		}
		nameMatch := st.Name != "" && strings.Contains(strings.ToLower(st.Name), lower)
		idMatch := st.StudentID != "" && strings.Contains(st.StudentID, term)
		if !nameMatch && !idMatch {
			continue
		}
		out = append(out, domain.StudentSummary{
			UID:       st.UID,
			Name:      st.Name,
			StudentID: st.StudentID,
			Email:     st.Email,
			PhotoURL:  str(doc.Data, "photoUrl"),
		})
	}
	return out, nil
}

// SendRequest invites targetUID to become uid's friend.
func (s *SocialService) SendRequest(ctx context.Context, uid, targetUID string) (domain.FriendRequest, error) {
	if targetUID == "" {
		return domain.FriendRequest{}, domain.Invalid("toId", targetUID, "target is required")
	}
	if targetUID == uid {
		return domain.FriendRequest{}, domain.Invalid("toId", targetUID, "cannot befriend yourself")
	}
	from, err := s.student(ctx, uid)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	to, err := s.student(ctx, targetUID)
	if err != nil {
		return domain.FriendRequest{}, err
	}

	_, err = s.store.Get(ctx, FriendsCollection(uid), targetUID)
	switch {
	case err == nil:
		return domain.FriendRequest{}, domain.ErrAlreadyFriends
	case !errors.Is(err, domain.ErrNotFound):
		return domain.FriendRequest{}, fmt.Errorf("check friendship: %w", err)
	}

	pending, err := s.requests.Pending(ctx, RequestFilter{FromID: uid, ToID: targetUID})
	if err != nil {
		return domain.FriendRequest{}, fmt.Errorf("check pending requests: %w", err)
	}
	if len(pending) > 0 {
		return domain.FriendRequest{}, domain.ErrRequestPending
	}

	req, err := s.requests.Create(ctx, domain.FriendRequest{
		FromID:    uid,
		FromName:  from.Name,
		ToID:      targetUID,
		ToName:    to.Name,
		Status:    domain.RequestPending,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("from", uid).Str("to", targetUID).Msg("create request")
		return domain.FriendRequest{}, fmt.Errorf("create request: %w", err)
	}
	s.publish(ctx, domain.ChangeEvent{Kind: domain.EventRequestCreated, UserID: targetUID, Request: &req})
	return req, nil
}

// Accept makes both students friends and removes the request. Only the
// addressee may accept.
func (s *SocialService) Accept(ctx context.Context, uid, requestID string) (domain.Friend, error) {
	req, err := s.incoming(ctx, uid, requestID)
	if err != nil {
		return domain.Friend{}, err
	}
	me, err := s.student(ctx, uid)
	if err != nil {
		return domain.Friend{}, err
	}

	since := s.now().UTC()
	friend := domain.Friend{UID: req.FromID, Name: req.FromName, Since: since}
	mirror := domain.Friend{UID: uid, Name: me.Name, Since: since}
	if err := s.store.Set(ctx, FriendsCollection(uid), friend.UID, friendDocument(friend)); err != nil {
		return domain.Friend{}, fmt.Errorf("add friend: %w", err)
	}
	if err := s.store.Set(ctx, FriendsCollection(req.FromID), mirror.UID, friendDocument(mirror)); err != nil {
		return domain.Friend{}, fmt.Errorf("add friend: %w", err)
	}
	if err := s.requests.Delete(ctx, req.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Friend{}, fmt.Errorf("remove request: %w", err)
	}

	s.publish(ctx, domain.ChangeEvent{Kind: domain.EventRequestRemoved, UserID: uid, Request: &req})
	s.publish(ctx, domain.ChangeEvent{Kind: domain.EventFriendAdded, UserID: uid, Friend: &friend})
	s.publish(ctx, domain.ChangeEvent{Kind: domain.EventFriendAdded, UserID: req.FromID, Friend: &mirror})
	s.log.Info().Str("uid", uid).Str("friend", friend.UID).Msg("request accepted")
	return friend, nil
}

// Decline removes a request addressed to uid.
func (s *SocialService) Decline(ctx context.Context, uid, requestID string) error {
	req, err := s.incoming(ctx, uid, requestID)
	if err != nil {
		return err
	}
	if err := s.requests.Delete(ctx, req.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("remove request: %w", err)
	}
	s.publish(ctx, domain.ChangeEvent{Kind: domain.EventRequestRemoved, UserID: uid, Request: &req})
	return nil
}

// State loads uid's friends and incoming pending requests.
func (s *SocialService) State(ctx context.Context, uid string) (domain.SocialState, error) {
	docs, err := s.store.List(ctx, FriendsCollection(uid))
	if err != nil {
		return domain.SocialState{}, fmt.Errorf("list friends: %w", err)
	}
	friends := make([]domain.Friend, 0, len(docs))
	for _, doc := range docs {
		friends = append(friends, FriendFromDocument(doc))
	}
	sort.SliceStable(friends, func(i, j int) bool { return friends[i].Name < friends[j].Name })

	requests, err := s.requests.Pending(ctx, RequestFilter{ToID: uid})
	if err != nil {
		return domain.SocialState{}, fmt.Errorf("list requests: %w", err)
	}
	return domain.SocialState{UserID: uid, Friends: friends, Requests: requests}, nil
}

// SignedOut tells uid's live feeds to stop.
func (s *SocialService) SignedOut(ctx context.Context, uid string) {
	s.publish(ctx, domain.ChangeEvent{Kind: domain.EventSignedOut, UserID: uid})
}

// Subscribe streams uid's social state: the current state first, then one
// state per change. A single goroutine folds bus events into the state. The
// channel closes on cancel, on sign-out or when ctx ends.
func (s *SocialService) Subscribe(ctx context.Context, uid string) (<-chan domain.SocialState, func(), error) {
	events, unsubscribe, err := s.bus.Subscribe(ctx, uid)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe %s: %w", uid, err)
	}
	state, err := s.State(ctx, uid)
	if err != nil {
		unsubscribe()
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan domain.SocialState, 8)
	go func() {
		defer close(out)
		defer unsubscribe()
		emitState(out, state)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok || ev.Kind == domain.EventSignedOut {
					return
				}
				state = ReduceSocial(state, ev)
				emitState(out, state)
			}
		}
	}()
	return out, cancel, nil
}

// ReduceSocial applies one change event. Applying the same event twice is
// the same as applying it once.
func ReduceSocial(state domain.SocialState, ev domain.ChangeEvent) domain.SocialState {
	next := domain.SocialState{
		UserID:   state.UserID,
		Friends:  append(make([]domain.Friend, 0, len(state.Friends)+1), state.Friends...),
		Requests: append(make([]domain.FriendRequest, 0, len(state.Requests)+1), state.Requests...),
	}
	switch ev.Kind {
	case domain.EventRequestCreated:
		if ev.Request == nil {
			break
		}
		for _, r := range next.Requests {
			if r.ID == ev.Request.ID {
				return next
			}
		}
		next.Requests = append(next.Requests, *ev.Request)
	case domain.EventRequestRemoved:
		if ev.Request == nil {
			break
		}
		kept := next.Requests[:0]
		for _, r := range next.Requests {
			if r.ID != ev.Request.ID {
				kept = append(kept, r)
			}
		}
		next.Requests = kept
	case domain.EventFriendAdded:
		if ev.Friend == nil {
			break
		}
		for i, f := range next.Friends {
			if f.UID == ev.Friend.UID {
				next.Friends[i] = *ev.Friend
				return next
			}
		}
		next.Friends = append(next.Friends, *ev.Friend)
		sort.SliceStable(next.Friends, func(i, j int) bool { return next.Friends[i].Name < next.Friends[j].Name })
	}
	return next
}

func (s *SocialService) incoming(ctx context.Context, uid, requestID string) (domain.FriendRequest, error) {
	req, err := s.requests.Get(ctx, requestID)
	if err != nil {
		return domain.FriendRequest{}, err
	}
	if req.ToID != uid {
		return domain.FriendRequest{}, domain.ErrForbidden
	}
	return req, nil
}

func (s *SocialService) student(ctx context.Context, uid string) (domain.Student, error) {
	doc, err := s.store.Get(ctx, CollectionStudents, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Student{}, fmt.Errorf("load student: %w", err)
	}
	st, ok := StudentFromDocument(doc)
	if !ok {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	return st, nil
}

func (s *SocialService) publish(ctx context.Context, ev domain.ChangeEvent) {
	ev.At = s.now().UTC()
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("uid", ev.UserID).Str("kind", string(ev.Kind)).Msg("publish change")
	}
}

func friendDocument(f domain.Friend) map[string]any {
	return map[string]any{
		"name":  f.Name,
		"since": f.Since.Format(time.RFC3339Nano),
	}
}

// emitState replaces a stale pending state rather than blocking.
func emitState(out chan domain.SocialState, state domain.SocialState) {
	select {
	case out <- state:
	default:
		select {
		case <-out:
		default:
		}
		out <- state
	}
}
