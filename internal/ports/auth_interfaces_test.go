package ports_test

import (
	"testing"

	"github.com/target/vista-ui/internal/adapters/memory"
	"github.com/target/vista-ui/internal/mocks"
	mockauth "github.com/target/vista-ui/internal/mocks/auth"
	"github.com/target/vista-ui/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthAPI = (*mocks.MockAuthAPI)(nil)
	var _ ports.WorkspaceAPI = (*mocks.MockWorkspaceAPI)(nil)
	var _ ports.AuthAPI = (*mockauth.StubAuthAPI)(nil)
	var _ ports.StorageProvider = (*memory.StorageProvider)(nil)
	var _ ports.BatchStorage = (*memory.Storage)(nil)
}
