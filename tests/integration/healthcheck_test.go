package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eliyaaki/auth-service/internal/testutil"
)

func Test_HealthCheck(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	RunTx(pg.Pool, t, func(srvURL string, _ Services) {
		resp, err := http.Get(srvURL + "/healthCheck")
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
