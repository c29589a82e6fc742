// Hand-written mock in the shape MockGen emits for the ReceiptFetcher
// interface of github.com/shubhamdubey02/chainindexer/internal/ingest.

package ingest

import (
	"context"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/mock/gomock"
)

// MockReceiptFetcher is a mock of the ReceiptFetcher interface.
type MockReceiptFetcher struct {
	ctrl     *gomock.Controller
	recorder *MockReceiptFetcherMockRecorder
}

// MockReceiptFetcherMockRecorder is the mock recorder for MockReceiptFetcher.
type MockReceiptFetcherMockRecorder struct {
	mock *MockReceiptFetcher
}

// NewMockReceiptFetcher creates a new mock instance.
func NewMockReceiptFetcher(ctrl *gomock.Controller) *MockReceiptFetcher {
	mock := &MockReceiptFetcher{ctrl: ctrl}
	mock.recorder = &MockReceiptFetcherMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockReceiptFetcher) EXPECT() *MockReceiptFetcherMockRecorder {
	return m.recorder
}

// Receipt mocks base method.
func (m *MockReceiptFetcher) Receipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Receipt", ctx, txHash)
	ret0, _ := ret[0].(*types.Receipt)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Receipt indicates an expected call of Receipt.
func (mr *MockReceiptFetcherMockRecorder) Receipt(ctx, txHash interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Receipt", reflect.TypeOf((*MockReceiptFetcher)(nil).Receipt), ctx, txHash)
}
