package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/aretw0/intake/pkg/ports"
)

// MockStore is a map-backed StateStore used to exercise the contract suite itself.
type MockStore struct {
	data map[string]*domain.State
}

func NewMockStore() *MockStore {
	return &MockStore{data: make(map[string]*domain.State)}
}

func (m *MockStore) Save(ctx context.Context, sessionID string, state *domain.State) error {
	m.data[sessionID] = state.Clone()
	return nil
}

func (m *MockStore) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	state, ok := m.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return state.Clone(), nil
}

func (m *MockStore) Delete(ctx context.Context, sessionID string) error {
	delete(m.data, sessionID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestStateStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, NewMockStore())
}

func TestValidatorFunc(t *testing.T) {
	var v ports.AnswerValidator = ports.ValidatorFunc(func(ctx context.Context, input string, q domain.QuestionSpec, vctx map[string]any) (domain.Verdict, error) {
		return domain.Accept(input + "!"), nil
	})

	got, err := v.Validate(context.Background(), "hi", domain.QuestionSpec{ID: "q"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Value("hi") != "hi!" {
		t.Errorf("Value() = %q, want %q", got.Value("hi"), "hi!")
	}
}
