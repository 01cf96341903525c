// Package rpcclientmock holds the gomock fake for rpcclient.Client, kept
// in its own package (grounded on the //go:generate mockgen pattern of
// datasync/chaindatafetcher/chaindata_fetcher.go) so gomock is a
// test-only dependency of callers rather than linked into the binary.
package rpcclientmock

import (
	"context"
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient"
)

// MockClient is a mock of the rpcclient.Client interface. Hand-written
// since mockgen's codegen step cannot be run here; the shape matches
// what `mockgen -destination mock_client.go -package rpcclientmock . Client`
// would produce.
type MockClient struct {
	ctrl     *gomock.Controller
	recorder *MockClientMockRecorder
}

// MockClientMockRecorder is the mock recorder for MockClient.
type MockClientMockRecorder struct {
	mock *MockClient
}

// NewMockClient creates a new mock instance.
func NewMockClient(ctrl *gomock.Controller) *MockClient {
	mock := &MockClient{ctrl: ctrl}
	mock.recorder = &MockClientMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockClient) EXPECT() *MockClientMockRecorder {
	return m.recorder
}

// GetBlockDAGInfo mocks base method.
func (m *MockClient) GetBlockDAGInfo(ctx context.Context) (*rpcclient.BlockDAGInfo, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetBlockDAGInfo", ctx)
	ret0, _ := ret[0].(*rpcclient.BlockDAGInfo)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetBlockDAGInfo indicates an expected call of GetBlockDAGInfo.
func (mr *MockClientMockRecorder) GetBlockDAGInfo(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBlockDAGInfo", reflect.TypeOf((*MockClient)(nil).GetBlockDAGInfo), ctx)
}

// GetBlocks mocks base method.
func (m *MockClient) GetBlocks(ctx context.Context, lowHash dbtype.Hash, includeBlocks, includeTxs bool) (*rpcclient.GetBlocksResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetBlocks", ctx, lowHash, includeBlocks, includeTxs)
	ret0, _ := ret[0].(*rpcclient.GetBlocksResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetBlocks indicates an expected call of GetBlocks.
func (mr *MockClientMockRecorder) GetBlocks(ctx, lowHash, includeBlocks, includeTxs interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBlocks", reflect.TypeOf((*MockClient)(nil).GetBlocks), ctx, lowHash, includeBlocks, includeTxs)
}

// GetVirtualChainFromBlock mocks base method.
func (m *MockClient) GetVirtualChainFromBlock(ctx context.Context, startHash dbtype.Hash, includeAcceptedTxIDs bool) (*rpcclient.VirtualChainResult, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetVirtualChainFromBlock", ctx, startHash, includeAcceptedTxIDs)
	ret0, _ := ret[0].(*rpcclient.VirtualChainResult)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetVirtualChainFromBlock indicates an expected call of GetVirtualChainFromBlock.
func (mr *MockClientMockRecorder) GetVirtualChainFromBlock(ctx, startHash, includeAcceptedTxIDs interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetVirtualChainFromBlock", reflect.TypeOf((*MockClient)(nil).GetVirtualChainFromBlock), ctx, startHash, includeAcceptedTxIDs)
}

// GetBlock mocks base method.
func (m *MockClient) GetBlock(ctx context.Context, hash dbtype.Hash, includeTxs bool) (*rpcclient.Block, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetBlock", ctx, hash, includeTxs)
	ret0, _ := ret[0].(*rpcclient.Block)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetBlock indicates an expected call of GetBlock.
func (mr *MockClientMockRecorder) GetBlock(ctx, hash, includeTxs interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetBlock", reflect.TypeOf((*MockClient)(nil).GetBlock), ctx, hash, includeTxs)
}

// Disconnect mocks base method.
func (m *MockClient) Disconnect() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Disconnect")
	ret0, _ := ret[0].(error)
	return ret0
}

// Disconnect indicates an expected call of Disconnect.
func (mr *MockClientMockRecorder) Disconnect() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Disconnect", reflect.TypeOf((*MockClient)(nil).Disconnect))
}
