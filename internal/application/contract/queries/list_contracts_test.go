package queries_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/application/contract/queries"
	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/test/helpers"
)

func TestListContracts_FiltersActive(t *testing.T) {
	repo := helpers.NewMockContractRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &contract.Contract{ID: "c-1", FactionSymbol: "COSMIC", Accepted: true}))
	require.NoError(t, repo.Save(ctx, &contract.Contract{ID: "c-2", FactionSymbol: "COSMIC", Accepted: true, Fulfilled: true}))
	require.NoError(t, repo.Save(ctx, &contract.Contract{ID: "c-3", FactionSymbol: "COSMIC"}))
	handler := queries.NewListContractsHandler(repo)

	all, err := handler.Handle(ctx, &queries.ListContractsQuery{})
	require.NoError(t, err)
	assert.Len(t, all.(*queries.ListContractsResponse).Contracts, 3)

	active, err := handler.Handle(ctx, &queries.ListContractsQuery{ActiveOnly: true})
	require.NoError(t, err)
	contracts := active.(*queries.ListContractsResponse).Contracts
	require.Len(t, contracts, 1)
	assert.Equal(t, "c-1", contracts[0].ID)
}
