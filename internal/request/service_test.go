package request

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hampstead-on-demand/request-management-api/internal/audit"
	"github.com/hampstead-on-demand/request-management-api/internal/authn"
	"github.com/hampstead-on-demand/request-management-api/internal/household"
	"github.com/hampstead-on-demand/request-management-api/internal/notification"
	"github.com/hampstead-on-demand/request-management-api/internal/request/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/config"
	dbmodel "github.com/hampstead-on-demand/request-management-api/internal/system/database/model"
	"github.com/hampstead-on-demand/request-management-api/internal/system/error/serviceerror"
	"github.com/hampstead-on-demand/request-management-api/internal/system/stores"
	"github.com/hampstead-on-demand/request-management-api/internal/user"
)

// Test fakes. The registry's transaction runner is real; only the client
// underneath it and the stores are faked.

type fakeResult struct{ affected int64 }

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.affected, nil }

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(query string, args ...interface{}) (sql.Result, error) {
	return fakeResult{affected: 1}, nil
}
func (t *fakeTx) Query(query string, args ...interface{}) (*sql.Rows, error) { return nil, nil }
func (t *fakeTx) Commit() error                                              { t.committed = true; return nil }
func (t *fakeTx) Rollback() error                                            { t.rolledBack = true; return nil }

type fakeDBClient struct {
	lastTx *fakeTx
}

func (c *fakeDBClient) Query(query dbmodel.DBQuery, args ...interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}
func (c *fakeDBClient) Execute(query dbmodel.DBQuery, args ...interface{}) (sql.Result, error) {
	return fakeResult{affected: 1}, nil
}
func (c *fakeDBClient) BeginTx() (dbmodel.TxInterface, error) {
	c.lastTx = &fakeTx{}
	return c.lastTx, nil
}

type fakeRequestStore struct {
	requests       map[string]*model.Request
	answers        map[string][]model.Answer
	statusConflict bool
	updateErr      error
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{
		requests: make(map[string]*model.Request),
		answers:  make(map[string][]model.Answer),
	}
}

func (s *fakeRequestStore) GetByID(ctx context.Context, requestID string) (*model.Request, error) {
	req, ok := s.requests[requestID]
	if !ok {
		return nil, nil
	}
	clone := *req
	return &clone, nil
}

func (s *fakeRequestStore) ListByHouseholds(ctx context.Context, householdIDs []string) ([]model.Request, error) {
	out := []model.Request{}
	for _, req := range s.requests {
		for _, id := range householdIDs {
			if req.HouseholdID == id {
				out = append(out, *req)
			}
		}
	}
	return out, nil
}

func (s *fakeRequestStore) ListAll(ctx context.Context) ([]model.Request, error) {
	out := []model.Request{}
	for _, req := range s.requests {
		out = append(out, *req)
	}
	return out, nil
}

func (s *fakeRequestStore) GetAnswers(ctx context.Context, requestID string) ([]model.Answer, error) {
	return s.answers[requestID], nil
}

func (s *fakeRequestStore) CreateWithTx(tx dbmodel.TxInterface, req *model.Request) error {
	clone := *req
	s.requests[req.RequestID] = &clone
	return nil
}

func (s *fakeRequestStore) CreateAnswersWithTx(tx dbmodel.TxInterface, answers []model.Answer) error {
	for _, answer := range answers {
		s.answers[answer.RequestID] = append(s.answers[answer.RequestID], answer)
	}
	return nil
}

func (s *fakeRequestStore) UpdateStatusWithTx(tx dbmodel.TxInterface, requestID string, from, to model.Status, updatedTime int64) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	req, ok := s.requests[requestID]
	if !ok || req.Status != from || s.statusConflict {
		return ErrStatusConflict
	}
	req.Status = to
	req.UpdatedTime = updatedTime
	return nil
}

func (s *fakeRequestStore) UpdateAssignmentWithTx(tx dbmodel.TxInterface, requestID string, team *model.Team, priority int, updatedTime int64) error {
	req, ok := s.requests[requestID]
	if !ok {
		return errors.New("request not found")
	}
	req.AssignedTeam = team
	req.Priority = priority
	req.UpdatedTime = updatedTime
	return nil
}

type fakeHouseholdStore struct {
	households map[string][]string // householdID -> member user ids
}

func newFakeHouseholdStore() *fakeHouseholdStore {
	return &fakeHouseholdStore{households: make(map[string][]string)}
}

func (s *fakeHouseholdStore) HouseholdIDsForUser(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	for householdID, members := range s.households {
		for _, member := range members {
			if member == userID {
				ids = append(ids, householdID)
			}
		}
	}
	return ids, nil
}

func (s *fakeHouseholdStore) IsMember(ctx context.Context, householdID, userID string) (bool, error) {
	for _, member := range s.households[householdID] {
		if member == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeHouseholdStore) ListMemberUserIDs(ctx context.Context, householdID string) ([]string, error) {
	return s.households[householdID], nil
}

func (s *fakeHouseholdStore) CreateWithTx(tx dbmodel.TxInterface, h *household.Household) error {
	s.households[h.HouseholdID] = []string{}
	return nil
}

func (s *fakeHouseholdStore) AddMemberWithTx(tx dbmodel.TxInterface, m *household.Member) error {
	s.households[m.HouseholdID] = append(s.households[m.HouseholdID], m.UserID)
	return nil
}

type fakeAuditStore struct {
	entries   []audit.Entry
	createErr error
}

func (s *fakeAuditStore) CreateWithTx(tx dbmodel.TxInterface, entry *audit.Entry) error {
	if s.createErr != nil {
		return s.createErr
	}
	if !entry.EntityType.IsValid() {
		return errors.New("unknown entity type")
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *fakeAuditStore) ListByEntity(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Entry, error) {
	out := []audit.Entry{}
	for _, entry := range s.entries {
		if entry.EntityType == entityType && entry.EntityID == entityID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users       map[string]*user.User
	staffEmails []string
}

func (s *fakeUserStore) GetByID(ctx context.Context, userID string) (*user.User, error) {
	return s.users[userID], nil
}

func (s *fakeUserStore) ListStaffEmails(ctx context.Context) ([]string, error) {
	return s.staffEmails, nil
}

type dispatched struct {
	kind      notification.Kind
	recipient string
	payload   notification.Payload
}

type recordingNotifier struct {
	sent []dispatched
}

func (n *recordingNotifier) Dispatch(ctx context.Context, kind notification.Kind, recipient string, payload notification.Payload) {
	n.sent = append(n.sent, dispatched{kind: kind, recipient: recipient, payload: payload})
}

// Test harness

type harness struct {
	svc      RequestService
	registry *stores.StoreRegistry
	requests *fakeRequestStore
	homes    *fakeHouseholdStore
	audits   *fakeAuditStore
	users    *fakeUserStore
	notifier *recordingNotifier
	dbClient *fakeDBClient
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	config.SetGlobal(&config.Config{
		ServiceArea: config.ServiceAreaConfig{AllowedPostcodes: []string{"NW3", "NW6", "NW8"}},
	})

	h := &harness{
		requests: newFakeRequestStore(),
		homes:    newFakeHouseholdStore(),
		audits:   &fakeAuditStore{},
		users: &fakeUserStore{
			users: map[string]*user.User{
				"member-1": {UserID: "member-1", Email: "member@example.com", Role: authn.RoleMember},
			},
			staffEmails: []string{"ops@example.com"},
		},
		notifier: &recordingNotifier{},
		dbClient: &fakeDBClient{},
	}

	h.registry = stores.NewStoreRegistry(h.dbClient)
	h.registry.Request = RequestStore(h.requests)
	h.registry.Household = household.HouseholdStore(h.homes)
	h.registry.Audit = audit.AuditStore(h.audits)
	h.registry.User = user.UserStore(h.users)

	h.svc = newRequestService(h.registry, h.notifier)
	return h
}

func (h *harness) seedRequest(status model.Status) *model.Request {
	req := &model.Request{
		RequestID:       "req-1",
		HouseholdID:     "house-1",
		CreatedByUserID: "member-1",
		Category:        model.CategoryMaintenance,
		Description:     "Leaking tap in the kitchen",
		Status:          status,
		Priority:        3,
		CreatedTime:     1000,
		UpdatedTime:     1000,
	}
	h.requests.requests[req.RequestID] = req
	h.homes.households["house-1"] = []string{"member-1"}
	return req
}

var (
	memberActor = authn.Actor{UserID: "member-1", Email: "member@example.com", Role: authn.RoleMember, MembershipStatus: authn.MembershipActive}
	adminActor  = authn.Actor{UserID: "admin-1", Email: "admin@example.com", Role: authn.RoleAdmin}
	opsActor    = authn.Actor{UserID: "ops-1", Email: "ops@example.com", Role: authn.RoleOpsStaff}
)

func TestCreateRequestCreatesHouseholdAndAudit(t *testing.T) {
	h := newHarness(t)

	resp, svcErr := h.svc.CreateRequest(context.Background(), memberActor, model.CreateAPIRequest{
		Category:    "MAINTENANCE",
		Description: "Boiler making noise",
		Postcode:    "NW3 5DN",
		Answers:     map[string]interface{}{"access": "key under mat"},
	})

	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusSubmitted, resp.Status)
	assert.Equal(t, 3, resp.Priority)
	assert.NotEmpty(t, resp.HouseholdID)

	// First request creates the household with the actor as owner.
	isMember, err := h.homes.IsMember(context.Background(), resp.HouseholdID, "member-1")
	require.NoError(t, err)
	assert.True(t, isMember)

	require.Len(t, h.audits.entries, 1)
	assert.Equal(t, audit.ActionCreate, h.audits.entries[0].Action)
	assert.Equal(t, audit.EntityTypeRequest, h.audits.entries[0].EntityType)
	assert.Nil(t, h.audits.entries[0].Before)
}

func TestCreateRequestReusesExistingHousehold(t *testing.T) {
	h := newHarness(t)
	h.homes.households["house-1"] = []string{"member-1"}

	resp, svcErr := h.svc.CreateRequest(context.Background(), memberActor, model.CreateAPIRequest{
		Category:    "CLEANING",
		Description: "Weekly clean",
		Postcode:    "NW6 1AA",
	})

	require.Nil(t, svcErr)
	assert.Equal(t, "house-1", resp.HouseholdID)
}

func TestCreateRequestRequiresActiveMembership(t *testing.T) {
	h := newHarness(t)

	pending := memberActor
	pending.MembershipStatus = authn.MembershipPending

	_, svcErr := h.svc.CreateRequest(context.Background(), pending, model.CreateAPIRequest{
		Category:    "MAINTENANCE",
		Description: "Anything",
		Postcode:    "NW3 1AA",
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)
	assert.Empty(t, h.audits.entries)
}

func TestCreateRequestRejectsOutOfAreaPostcode(t *testing.T) {
	h := newHarness(t)

	_, svcErr := h.svc.CreateRequest(context.Background(), memberActor, model.CreateAPIRequest{
		Category:    "MAINTENANCE",
		Description: "Anything",
		Postcode:    "SW1A 1AA",
	})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)
}

func TestChangeStatusHappyPath(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusSubmitted)

	resp, svcErr := h.svc.ChangeStatus(context.Background(), adminActor, "req-1", model.StatusChangeAPIRequest{Status: "TRIAGED"})

	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusTriaged, resp.Status)

	require.Len(t, h.audits.entries, 1)
	entry := h.audits.entries[0]
	assert.Equal(t, audit.ActionStatusChange, entry.Action)
	require.NotNil(t, entry.Before)
	assert.JSONEq(t, `{"status":"SUBMITTED"}`, *entry.Before)
	assert.JSONEq(t, `{"status":"TRIAGED"}`, entry.After)

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, notification.KindStatusChanged, h.notifier.sent[0].kind)
	assert.Equal(t, "member@example.com", h.notifier.sent[0].recipient)
}

func TestChangeStatusQuoteSentUsesQuoteTemplate(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusQuoting)

	_, svcErr := h.svc.ChangeStatus(context.Background(), adminActor, "req-1", model.StatusChangeAPIRequest{Status: "QUOTE_SENT"})

	require.Nil(t, svcErr)
	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, notification.KindQuoteSent, h.notifier.sent[0].kind)
}

func TestChangeStatusIsStaffOnly(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusSubmitted)

	_, svcErr := h.svc.ChangeStatus(context.Background(), memberActor, "req-1", model.StatusChangeAPIRequest{Status: "TRIAGED"})
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)
	assert.Empty(t, h.audits.entries)

	// Ops staff drive the lifecycle just like admins.
	resp, svcErr := h.svc.ChangeStatus(context.Background(), opsActor, "req-1", model.StatusChangeAPIRequest{Status: "TRIAGED"})
	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusTriaged, resp.Status)
}

func TestAssignIsStaffOnly(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusTriaged)

	team := "MAINTENANCE"
	_, svcErr := h.svc.Assign(context.Background(), memberActor, "req-1", model.AssignAPIRequest{AssignedTeam: &team})
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)

	resp, svcErr := h.svc.Assign(context.Background(), opsActor, "req-1", model.AssignAPIRequest{AssignedTeam: &team})
	require.Nil(t, svcErr)
	require.NotNil(t, resp.AssignedTeam)
	assert.Equal(t, model.TeamMaintenance, *resp.AssignedTeam)
}

func TestChangeStatusRejectsIllegalTransition(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusCompleted)

	_, svcErr := h.svc.ChangeStatus(context.Background(), adminActor, "req-1", model.StatusChangeAPIRequest{Status: "CANCELLED"})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.InvalidTransitionError.Code, svcErr.Code)
	assert.Empty(t, h.audits.entries)
	assert.Empty(t, h.notifier.sent)
}

func TestChangeStatusErrorNamesAllowedTargets(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusQuoting)

	_, svcErr := h.svc.ChangeStatus(context.Background(), adminActor, "req-1", model.StatusChangeAPIRequest{Status: "COMPLETED"})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.InvalidTransitionError.Code, svcErr.Code)
	assert.Contains(t, svcErr.ErrorDescription, "from QUOTING to COMPLETED")
	assert.Contains(t, svcErr.ErrorDescription, "QUOTE_SENT, CANCELLED")

	h.seedRequest(model.StatusCompleted)
	_, svcErr = h.svc.ChangeStatus(context.Background(), adminActor, "req-1", model.StatusChangeAPIRequest{Status: "SUBMITTED"})
	require.NotNil(t, svcErr)
	assert.Contains(t, svcErr.ErrorDescription, "allowed targets: none")
}

func TestChangeStatusConcurrentMoveIsConflict(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusSubmitted)
	h.requests.statusConflict = true

	_, svcErr := h.svc.ChangeStatus(context.Background(), adminActor, "req-1", model.StatusChangeAPIRequest{Status: "TRIAGED"})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ConflictError.Code, svcErr.Code)
	assert.Empty(t, h.notifier.sent)
}

func TestChangeStatusAuditFailureAbortsTransaction(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusSubmitted)
	h.audits.createErr = errors.New("audit table unavailable")

	_, svcErr := h.svc.ChangeStatus(context.Background(), adminActor, "req-1", model.StatusChangeAPIRequest{Status: "TRIAGED"})

	require.NotNil(t, svcErr)
	require.NotNil(t, h.dbClient.lastTx)
	assert.True(t, h.dbClient.lastTx.rolledBack, "transaction must roll back when the audit insert fails")
	assert.False(t, h.dbClient.lastTx.committed)
	assert.Empty(t, h.notifier.sent)
}

// deadChannelNotifier drops every dispatch, standing in for an unreachable
// mail server.
type deadChannelNotifier struct{}

func (deadChannelNotifier) Dispatch(ctx context.Context, kind notification.Kind, recipient string, payload notification.Payload) {
}

func TestChangeStatusCommitsWhenNotificationChannelIsDown(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusSubmitted)

	svc := newRequestService(h.registry, deadChannelNotifier{})
	resp, svcErr := svc.ChangeStatus(context.Background(), adminActor, "req-1", model.StatusChangeAPIRequest{Status: "TRIAGED"})

	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusTriaged, resp.Status)
	assert.Equal(t, model.StatusTriaged, h.requests.requests["req-1"].Status)

	require.Len(t, h.audits.entries, 1)
	require.NotNil(t, h.dbClient.lastTx)
	assert.True(t, h.dbClient.lastTx.committed, "mutation and audit must commit regardless of the notification channel")
}

func TestReopenCancelledRequest(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusCancelled)

	resp, svcErr := h.svc.ChangeStatus(context.Background(), adminActor, "req-1", model.StatusChangeAPIRequest{Status: "SUBMITTED"})

	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusSubmitted, resp.Status)
}

func TestAssignTeamAndPriority(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusTriaged)

	team := "MAINTENANCE"
	priority := 1
	resp, svcErr := h.svc.Assign(context.Background(), adminActor, "req-1", model.AssignAPIRequest{
		AssignedTeam: &team,
		Priority:     &priority,
	})

	require.Nil(t, svcErr)
	require.NotNil(t, resp.AssignedTeam)
	assert.Equal(t, model.TeamMaintenance, *resp.AssignedTeam)
	assert.Equal(t, 1, resp.Priority)

	require.Len(t, h.audits.entries, 1)
	assert.Equal(t, audit.ActionAssignmentChange, h.audits.entries[0].Action)
}

func TestAssignUnassignedClearsTeam(t *testing.T) {
	h := newHarness(t)
	req := h.seedRequest(model.StatusTriaged)
	team := model.TeamRenovations
	req.AssignedTeam = &team

	unassigned := model.TeamUnassigned
	resp, svcErr := h.svc.Assign(context.Background(), adminActor, "req-1", model.AssignAPIRequest{AssignedTeam: &unassigned})

	require.Nil(t, svcErr)
	assert.Nil(t, resp.AssignedTeam)
}

func TestAssignRequiresAField(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusTriaged)

	_, svcErr := h.svc.Assign(context.Background(), adminActor, "req-1", model.AssignAPIRequest{})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
}

func TestAssignValidatesPriorityBounds(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusTriaged)

	for _, priority := range []int{0, 6} {
		p := priority
		_, svcErr := h.svc.Assign(context.Background(), adminActor, "req-1", model.AssignAPIRequest{Priority: &p})
		require.NotNil(t, svcErr)
		assert.Equal(t, serviceerror.ValidationError.Code, svcErr.Code)
	}
}

func TestRespondToQuoteAccept(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusQuoteSent)

	resp, svcErr := h.svc.RespondToQuote(context.Background(), memberActor, "req-1", model.QuoteResponseAPIRequest{Action: "accept"})

	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusQuoteAccepted, resp.Status)

	require.Len(t, h.audits.entries, 1)
	assert.Equal(t, audit.ActionQuoteAccepted, h.audits.entries[0].Action)

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, notification.KindQuoteResponse, h.notifier.sent[0].kind)
	assert.Equal(t, "ops@example.com", h.notifier.sent[0].recipient)
}

func TestRespondToQuoteRejectDeclinesRequest(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusQuoteSent)

	resp, svcErr := h.svc.RespondToQuote(context.Background(), memberActor, "req-1", model.QuoteResponseAPIRequest{Action: "reject", Note: "too expensive"})

	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusRejected, resp.Status)
	require.Len(t, h.audits.entries, 1)
	assert.Equal(t, audit.ActionQuoteRejected, h.audits.entries[0].Action)
	assert.JSONEq(t, `{"status":"REJECTED","note":"too expensive"}`, h.audits.entries[0].After)
}

func TestRespondToQuoteRequiresQuoteSent(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusTriaged)

	_, svcErr := h.svc.RespondToQuote(context.Background(), memberActor, "req-1", model.QuoteResponseAPIRequest{Action: "accept"})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.InvalidTransitionError.Code, svcErr.Code)
}

func TestRespondToQuoteRequiresHouseholdMembership(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusQuoteSent)

	// Staff role does not substitute for household membership.
	_, svcErr := h.svc.RespondToQuote(context.Background(), adminActor, "req-1", model.QuoteResponseAPIRequest{Action: "accept"})

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)
}

func TestCancelWithinWindow(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusQuoteSent)

	resp, svcErr := h.svc.Cancel(context.Background(), memberActor, "req-1")

	require.Nil(t, svcErr)
	assert.Equal(t, model.StatusCancelled, resp.Status)

	require.Len(t, h.audits.entries, 1)
	assert.JSONEq(t, `{"status":"CANCELLED","cancelledBy":"member"}`, h.audits.entries[0].After)

	// Member cancellations alert the staff, not the member themselves.
	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, notification.KindRequestCancelled, h.notifier.sent[0].kind)
	assert.Equal(t, "ops@example.com", h.notifier.sent[0].recipient)
}

func TestCancelPastWindowIsForbidden(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusQuoteAccepted)

	_, svcErr := h.svc.Cancel(context.Background(), memberActor, "req-1")

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)
	assert.Empty(t, h.audits.entries)
	assert.Empty(t, h.notifier.sent)
}

func TestCancelByNonMemberIsForbidden(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusSubmitted)

	outsider := authn.Actor{UserID: "other-1", Role: authn.RoleMember, MembershipStatus: authn.MembershipActive}
	_, svcErr := h.svc.Cancel(context.Background(), outsider, "req-1")

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)
}

func TestGetEnforcesHouseholdVisibility(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusSubmitted)

	outsider := authn.Actor{UserID: "other-1", Role: authn.RoleMember, MembershipStatus: authn.MembershipActive}
	_, svcErr := h.svc.Get(context.Background(), outsider, "req-1")
	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ForbiddenError.Code, svcErr.Code)

	detail, svcErr := h.svc.Get(context.Background(), opsActor, "req-1")
	require.Nil(t, svcErr)
	assert.Equal(t, "req-1", detail.RequestID)
}

func TestGetUnknownRequestIsNotFound(t *testing.T) {
	h := newHarness(t)

	_, svcErr := h.svc.Get(context.Background(), adminActor, "missing")

	require.NotNil(t, svcErr)
	assert.Equal(t, serviceerror.ResourceNotFoundError.Code, svcErr.Code)
}

func TestListForActorScopes(t *testing.T) {
	h := newHarness(t)
	h.seedRequest(model.StatusSubmitted)
	h.requests.requests["req-2"] = &model.Request{
		RequestID:   "req-2",
		HouseholdID: "house-2",
		Status:      model.StatusTriaged,
	}

	memberList, svcErr := h.svc.ListForActor(context.Background(), memberActor)
	require.Nil(t, svcErr)
	require.Len(t, memberList, 1)
	assert.Equal(t, "req-1", memberList[0].RequestID)

	staffList, svcErr := h.svc.ListForActor(context.Background(), opsActor)
	require.Nil(t, svcErr)
	assert.Len(t, staffList, 2)
}
