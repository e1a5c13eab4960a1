package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/planforge/go-session-client/credits"
	"github.com/planforge/go-session-client/identity"
	"github.com/planforge/go-session-client/session/credstore"
	"github.com/planforge/go-session-client/token"
	"github.com/planforge/go-session-client/users"
)

// defaultInitDelay lets the host's first render settle before the store
// reads and the reconciliation fetch begin. Stability, not correctness.
const defaultInitDelay = 150 * time.Millisecond

// defaultRememberWindow is the "stay signed in" validity window.
const defaultRememberWindow = 30 * 24 * time.Hour

// Deps holds all external dependencies for the Manager.
type Deps struct {
	Store      credstore.Store    // Persisted credential record
	Identity   identity.Client    // Remote identity API
	Deductions *credits.Scheduler // Daily credit deduction
}

// Manager is the only owner of the session. It restores a cached session at
// process start, performs login/logout/role transitions, and exposes
// read-only projections to the rest of the client.
//
// Persistence is explicit: every mutator writes the store synchronously
// before returning, so a reader in the same turn sees credential and user
// move together. There is no persist-on-change observer that could re-fire
// during restoration.
type Manager struct {
	mu           sync.Mutex
	state        State
	token        string
	user         *users.User
	role         users.RoleType
	roleSelected bool

	// generation invalidates in-flight initializer continuations: Login
	// and Logout bump it, and any initializer step that finds a different
	// generation than the one it started with discards its conclusion.
	generation uint64
	initOnce   sync.Once

	store          credstore.Store
	identity       identity.Client
	deductions     *credits.Scheduler
	nowTime        func() time.Time
	initDelay      time.Duration
	rememberWindow time.Duration
	log            zerolog.Logger
}

// ManagerOption modifies a Manager.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithInitDelay sets the delay before initialization starts its work.
func WithInitDelay(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.initDelay = d
	}
}

// WithRememberWindow sets how long a "stay signed in" session stays valid.
func WithRememberWindow(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.rememberWindow = d
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager initializes a Manager with required dependencies.
func NewManager(deps Deps, options ...ManagerOption) (*Manager, error) {
	if deps.Store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if deps.Identity == nil {
		return nil, errors.New("[NewManager] identity client is required")
	}
	if deps.Deductions == nil {
		return nil, errors.New("[NewManager] deduction scheduler is required")
	}

	manager := &Manager{
		state:          StateUninitialized,
		store:          deps.Store,
		identity:       deps.Identity,
		deductions:     deps.Deductions,
		nowTime:        time.Now,
		initDelay:      defaultInitDelay,
		rememberWindow: defaultRememberWindow,
		log:            zerolog.Nop(),
	}
	for _, opt := range options {
		opt(manager)
	}
	return manager, nil
}

// Initialize reconciles the persisted credential with the remote identity
// and produces the initial session. It runs its work once; later calls are
// no-ops. Whatever happens, the session ends initialized: a crash anywhere
// in the sequence yields a logged-out state, never a hang.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		m.initialize(ctx)
	})
}

func (m *Manager) initialize(ctx context.Context) {
	m.mu.Lock()
	// A sign-in that landed before initialization ran already established
	// the session; demoting it to restoring would make an authenticated
	// session transiently read as logged out.
	if m.state == StateAuthenticated {
		m.mu.Unlock()
		return
	}
	m.state = StateRestoring
	generation := m.generation
	m.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Msg("session initialization panicked, forcing logged-out state")
			m.finishLoggedOut(generation)
		}
	}()

	if m.initDelay > 0 {
		select {
		case <-time.After(m.initDelay):
		case <-ctx.Done():
			m.finishLoggedOut(generation)
			return
		}
	}

	// An expired "stay signed in" window invalidates everything the device
	// remembers, before any remote call is made.
	if expiry, err := m.store.Remember(); err == nil {
		if !expiry.After(m.nowTime().UTC()) {
			if err := m.store.Wipe(); err != nil {
				m.log.Warn().Err(err).Msg("failed to wipe expired remembered session")
			}
			m.finishLoggedOut(generation)
			return
		}
	}

	credential, cached, err := m.store.Credentials()
	if err != nil || credential == "" {
		m.finishLoggedOut(generation)
		return
	}

	if !token.IsValid(credential) {
		if err := m.store.DeleteCredentials(); err != nil {
			m.log.Warn().Err(err).Msg("failed to clear expired credentials")
		}
		m.finishLoggedOut(generation)
		return
	}

	// A token without a usable cached user is a half-written record from a
	// previous run; restoring from it would fabricate a session.
	if !cached.WellFormed() {
		if err := m.store.DeleteCredentials(); err != nil {
			m.log.Warn().Err(err).Msg("failed to clear orphaned credentials")
		}
		m.finishLoggedOut(generation)
		return
	}

	fresh, err := m.identity.Me(ctx, credential)
	if err != nil {
		// A transient identity failure must not log the user out; the
		// cached record stands in until the next reconciliation.
		m.log.Warn().Err(err).Msg("identity reconciliation failed, restoring from cached user")
		m.restore(generation, credential, cached)
		return
	}
	m.restore(generation, credential, fresh)
}

// finishLoggedOut concludes initialization with an empty session, unless a
// login won the race in the meantime.
func (m *Manager) finishLoggedOut(generation uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != generation {
		return
	}
	m.state = StateUnauthenticated
	m.token = ""
	m.user = nil
	m.role = ""
	m.roleSelected = false
}

// restore concludes initialization with a continuing session. Restored
// sessions never trigger the daily deduction; only a genuine sign-in does.
// The pair being restored came from the store (possibly refreshed from the
// remote record), so a failed write-back is logged but must not cost the
// session: initialization always ends in a settled state.
func (m *Manager) restore(generation uint64, credential string, user *users.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.generation != generation {
		return
	}
	u := *user
	if err := m.store.SaveCredentials(credential, &u); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist refreshed session record")
	}
	m.state = StateAuthenticated
	m.token = credential
	m.user = &u
	m.role = u.Role
	m.roleSelected = u.RoleSelected
}

// LoginOption modifies a single login call.
type LoginOption func(*loginConfig)

type loginConfig struct {
	remember bool
}

// WithRememberMe requests a "stay signed in" window for this login.
func WithRememberMe() LoginOption {
	return func(c *loginConfig) {
		c.remember = true
	}
}

// Login establishes an authenticated session from a fresh, genuine sign-in.
// The credential/user pair replaces the session atomically and is persisted
// before Login returns; a store read in the same turn sees both or neither.
// For entitled accounts the daily credit deduction runs before Login
// returns, but its failures are swallowed: a login never fails because
// billing bookkeeping failed.
func (m *Manager) Login(ctx context.Context, credential string, user *users.User, options ...LoginOption) error {
	if strings.TrimSpace(credential) == "" {
		return EmptyCredentialErr
	}
	if !user.WellFormed() {
		return MalformedUserErr
	}

	cfg := loginConfig{}
	for _, opt := range options {
		opt(&cfg)
	}

	m.mu.Lock()
	// Whatever the initializer is still doing, its conclusions are stale now.
	m.generation++
	persistErr := m.applyLocked(credential, user)
	if persistErr == nil && cfg.remember {
		// The credential pair is already consistent in memory and store; a
		// failed remember window only shortens the session to this process.
		if err := m.store.SaveRemember(m.nowTime().UTC().Add(m.rememberWindow)); err != nil {
			m.log.Warn().Err(err).Msg("failed to persist remember-me window")
		}
	}
	entitled := user.EntitledToDailyCredit()
	m.mu.Unlock()

	if persistErr != nil {
		return errors.Wrap(persistErr, "[Manager.Login] persist session")
	}

	if entitled {
		m.deductions.MaybeDeductDaily(ctx, credential)
	}
	return nil
}

// applyLocked persists the credential pair and, only once the write stuck,
// replaces the in-memory session. Persisting first keeps memory and store
// from diverging: a failed write leaves the previous session fully intact
// on both sides. Callers hold m.mu.
func (m *Manager) applyLocked(credential string, user *users.User) error {
	u := *user
	if err := m.store.SaveCredentials(credential, &u); err != nil {
		return err
	}
	m.state = StateAuthenticated
	m.token = credential
	m.user = &u
	m.role = u.Role
	m.roleSelected = u.RoleSelected
	return nil
}

// Logout clears the session and the entire persisted record. The deduction
// marker goes with it: a different account signing in on this device later
// must not inherit it.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.state = StateUnauthenticated
	m.token = ""
	m.user = nil
	m.role = ""
	m.roleSelected = false

	if err := m.store.Wipe(); err != nil {
		return errors.Wrap(err, "[Manager.Logout] wipe store")
	}
	return nil
}

// SelectRole commits the account to a role. The remote endpoint decides;
// only after it accepts is the local user patched and persisted. On
// rejection the error is returned and nothing changes locally.
func (m *Manager) SelectRole(ctx context.Context, role users.RoleType) error {
	if !role.Valid() {
		return InvalidRoleErr
	}

	m.mu.Lock()
	credential := m.token
	authenticated := m.state == StateAuthenticated && m.user != nil
	m.mu.Unlock()

	if !authenticated {
		return NotAuthenticatedErr
	}

	if err := m.identity.SelectRole(ctx, credential, role); err != nil {
		return errors.Wrap(err, "[Manager.SelectRole] remote role selection")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// The session may have been replaced or cleared while the remote call
	// was in flight; a stale confirmation must not resurrect it.
	if m.token != credential || m.user == nil {
		return nil
	}

	patched := *m.user
	patched.Role = role
	patched.RoleSelected = true

	if err := m.store.SaveCredentials(m.token, &patched); err != nil {
		return errors.Wrap(err, "[Manager.SelectRole] persist role")
	}
	m.user = &patched
	m.role = role
	m.roleSelected = true
	return nil
}

// Current returns a snapshot of the session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	var user *users.User
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return Session{State: m.state, Token: m.token, User: user}
}

// User returns a copy of the current user, or nil.
func (m *Manager) User() *users.User {
	return m.Current().User
}

// Token returns the current credential, empty when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Initialized reports whether initialization has completed.
func (m *Manager) Initialized() bool {
	return m.Current().Initialized()
}

// Role returns the role mirror and whether the account has committed to it.
func (m *Manager) Role() (users.RoleType, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.role, m.roleSelected
}
