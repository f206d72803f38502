package message

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/household"
	"github.com/hampstead-on-demand/request-management-api/internal/notification"
	"github.com/hampstead-on-demand/request-management-api/internal/request"
	reqmodel "github.com/hampstead-on-demand/request-management-api/internal/request/model"
	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/stores"
	"github.com/hampstead-on-demand/request-management-api/internal/user"
)

type fakeDBClient struct{}

func (fakeDBClient) Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}
func (fakeDBClient) Execute(query dbmodel.DBQuery, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (fakeDBClient) BeginTx() (dbmodel.TxInterface, error) { return nil, nil }

type fakeMessageStore struct {
	threads  map[string]*Thread // keyed by request id
	messages map[string][]Message
}

func (s *fakeMessageStore) GetThreadByRequestID(ctx context.Context, requestID string) (*Thread, error) {
	return s.threads[requestID], nil
}

func (s *fakeMessageStore) CreateThread(ctx context.Context, t *Thread) error {
	s.threads[t.RequestID] = t
	return nil
}

func (s *fakeMessageStore) ListMessages(ctx context.Context, threadID string) ([]Message, error) {
	return s.messages[threadID], nil
}

func (s *fakeMessageStore) CreateMessage(ctx context.Context, m *Message) error {
	s.messages[m.ThreadID] = append(s.messages[m.ThreadID], *m)
	return nil
}

type fakeRequestStore struct {
	requests map[string]*reqmodel.Request
}

func (s *fakeRequestStore) GetByID(ctx context.Context, requestID string) (*reqmodel.Request, error) {
	return s.requests[requestID], nil
}

func (s *fakeRequestStore) ListByHouseholds(ctx context.Context, householdIDs []string) ([]reqmodel.Request, error) {
	return nil, nil
}

func (s *fakeRequestStore) ListAll(ctx context.Context) ([]reqmodel.Request, error) { return nil, nil }

func (s *fakeRequestStore) GetAnswers(ctx context.Context, requestID string) ([]reqmodel.Answer, error) {
	return nil, nil
}

func (s *fakeRequestStore) CreateWithTx(tx dbmodel.TxInterface, req *reqmodel.Request) error {
	return nil
}

func (s *fakeRequestStore) CreateAnswersWithTx(tx dbmodel.TxInterface, answers []reqmodel.Answer) error {
	return nil
}

func (s *fakeRequestStore) UpdateStatusWithTx(tx dbmodel.TxInterface, requestID string, from, to reqmodel.Status, updatedTime int64) error {
	return nil
}

func (s *fakeRequestStore) UpdateAssignmentWithTx(tx dbmodel.TxInterface, requestID string, team *reqmodel.Team, priority int, updatedTime int64) error {
	return nil
}

type fakeHouseholdStore struct {
	members map[string][]string
}

func (s *fakeHouseholdStore) HouseholdIDsForUser(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func (s *fakeHouseholdStore) IsMember(ctx context.Context, householdID, userID string) (bool, error) {
	for _, member := range s.members[householdID] {
		if member == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeHouseholdStore) ListMemberUserIDs(ctx context.Context, householdID string) ([]string, error) {
	return s.members[householdID], nil
}

func (s *fakeHouseholdStore) CreateWithTx(tx dbmodel.TxInterface, h *household.Household) error {
	return nil
}

func (s *fakeHouseholdStore) AddMemberWithTx(tx dbmodel.TxInterface, m *household.Member) error {
	return nil
}

type fakeUserStore struct {
	users map[string]*user.User
}

func (s *fakeUserStore) GetByID(ctx context.Context, userID string) (*user.User, error) {
	return s.users[userID], nil
}

func (s *fakeUserStore) ListStaffEmails(ctx context.Context) ([]string, error) { return nil, nil }

type dispatched struct {
	kind      notification.Kind
	recipient string
}

type recordingNotifier struct {
	sent []dispatched
}

func (n *recordingNotifier) Dispatch(ctx context.Context, kind notification.Kind, recipient string, payload notification.Payload) {
	n.sent = append(n.sent, dispatched{kind: kind, recipient: recipient})
}

func newTestService(t *testing.T) (MessageService, *fakeMessageStore, *recordingNotifier) {
	t.Helper()

	messages := &fakeMessageStore{
		threads:  make(map[string]*Thread),
		messages: make(map[string][]Message),
	}
	notifier := &recordingNotifier{}

	registry := stores.NewStoreRegistry(fakeDBClient{})
	registry.Message = MessageStore(messages)
	registry.Request = request.RequestStore(&fakeRequestStore{
		requests: map[string]*reqmodel.Request{
			"req-1": {
				RequestID:       "req-1",
				HouseholdID:     "house-1",
				CreatedByUserID: "member-1",
				Status:          reqmodel.StatusTriaged,
			},
		},
	})
	registry.Household = household.HouseholdStore(&fakeHouseholdStore{
		members: map[string][]string{"house-1": {"member-1"}},
	})
	registry.User = user.UserStore(&fakeUserStore{
		users: map[string]*user.User{
			"member-1": {UserID: "member-1", Email: "member@example.com"},
		},
	})

	return newMessageService(registry, notifier), messages, notifier
}

var (
	memberActor = authn.Actor{UserID: "member-1", Role: authn.RoleMember, MembershipStatus: authn.MembershipActive}
	staffActor  = authn.Actor{UserID: "ops-1", Role: authn.RoleOpsStaff}
)

func TestListCreatesThreadLazily(t *testing.T) {
	svc, messages, _ := newTestService(t)

	responses, svcErr := svc.List(context.Background(), memberActor, "req-1")

	require.Nil(t, svcErr)
	assert.Empty(t, responses)
	require.NotNil(t, messages.threads["req-1"], "first access must create the thread")

	threadID := messages.threads["req-1"].ThreadID
	_, svcErr = svc.List(context.Background(), memberActor, "req-1")
	require.Nil(t, svcErr)
	assert.Equal(t, threadID, messages.threads["req-1"].ThreadID, "second access must reuse the thread")
}

func TestPostByMember(t *testing.T) {
	svc, messages, notifier := newTestService(t)

	resp, svcErr := svc.Post(context.Background(), memberActor, "req-1", PostAPIRequest{Body: "When can you come?"})

	require.Nil(t, svcErr)
	assert.Equal(t, "member-1", resp.SenderUserID)
	require.NotNil(t, messages.threads["req-1"])
	assert.Len(t, messages.messages[messages.threads["req-1"].ThreadID], 1)
	assert.Empty(t, notifier.sent, "member posts do not trigger emails")
}

func TestPostByStaffEmailsCreator(t *testing.T) {
	svc, _, notifier := newTestService(t)

	_, svcErr := svc.Post(context.Background(), staffActor, "req-1", PostAPIRequest{Body: "We will visit on Tuesday."})

	require.Nil(t, svcErr)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, notification.KindAdminReply, notifier.sent[0].kind)
	assert.Equal(t, "member@example.com", notifier.sent[0].recipient)
}

func TestPostRequiresBodyOrAttachments(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, svcErr := svc.Post(context.Background(), memberActor, "req-1", PostAPIRequest{})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestPostAttachmentsOnlyIsAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp, svcErr := svc.Post(context.Background(), memberActor, "req-1", PostAPIRequest{
		Attachments: []string{"https://cdn.example.com/photo.jpg"},
	})

	require.Nil(t, svcErr)
	assert.Equal(t, []string{"https://cdn.example.com/photo.jpg"}, resp.Attachments)
}

func TestPostEnforcesBodyLimit(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, svcErr := svc.Post(context.Background(), memberActor, "req-1", PostAPIRequest{
		Body: strings.Repeat("a", 5001),
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestAccessIsScopedToHouseholdAndStaff(t *testing.T) {
	svc, _, _ := newTestService(t)

	outsider := authn.Actor{UserID: "other-1", Role: authn.RoleMember, MembershipStatus: authn.MembershipActive}
	_, svcErr := svc.List(context.Background(), outsider, "req-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)

	_, svcErr = svc.List(context.Background(), staffActor, "req-1")
	assert.Nil(t, svcErr)
}

func TestUnknownRequestIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, svcErr := svc.List(context.Background(), memberActor, "missing")

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ResourceNotFoundError.Code, svcErr.Code)
}
