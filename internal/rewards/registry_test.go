package rewards

import (
	"encoding/json"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/lockdrop/internal/types"
)

func native(d string) types.RewardToken { return types.RewardToken{Native: &d} }

func TestDistributeInstantiatesOnce(t *testing.T) {
	r := NewRegistry()
	cfg := types.Config{Denom: "ulock", RewardContractCodeID: 17}

	msgs, err := r.PlanDistribute("lockdrop1", "uatom", cfg)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	inst := msgs[0].(types.WasmInstantiate)
	require.Equal(t, uint64(17), inst.CodeID)
	require.Equal(t, "lockdrop1", inst.Admin)
	require.Equal(t, "lockdrop_rewards_uatom", inst.Label)

	var body map[string]any
	require.NoError(t, json.Unmarshal(inst.Msg, &body))
	require.Equal(t, "lockdrop1", body["staking_contract"])
	require.Equal(t, float64(24), body["reward_duration"])
	require.Equal(t, map[string]any{"native": "uatom"}, body["reward_token"])

	require.True(t, r.IsPending("uatom"))
	msgs, err = r.PlanDistribute("lockdrop1", "uatom", cfg)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestDistributeStakingDenomIsUnauthorized(t *testing.T) {
	r := NewRegistry()
	_, err := r.PlanDistribute("lockdrop1", "ulock", types.Config{Denom: "ulock"})
	require.ErrorIs(t, err, types.ErrUnauthorized)
	require.Empty(t, r.Pending())
}

func TestRegisterRequiresPendingNativeDenom(t *testing.T) {
	r := NewRegistry()
	cw20 := "juno1token"

	_, err := r.Register("dist1", native("uatom"))
	require.ErrorIs(t, err, types.ErrRewardContractNotFound)

	_, err = r.PlanDistribute("lockdrop1", "uatom", types.Config{Denom: "ulock"})
	require.NoError(t, err)

	_, err = r.Register("dist1", types.RewardToken{Cw20: &cw20})
	require.ErrorIs(t, err, types.ErrInvalidDenom)

	denom, err := r.Register("dist1", native("uatom"))
	require.NoError(t, err)
	require.Equal(t, "uatom", denom)
	require.False(t, r.IsPending("uatom"))

	addr, ok := r.Lookup("uatom")
	require.True(t, ok)
	require.Equal(t, "dist1", addr)
}

func TestFundMsg(t *testing.T) {
	r := NewRegistry()
	_, err := r.FundMsg("uatom", sdkmath.NewInt(5))
	require.ErrorIs(t, err, types.ErrRewardContractNotFound)

	r.Import(Genesis{Contracts: []Contract{{Denom: "uatom", Address: "dist1"}}})

	_, err = r.FundMsg("uatom", sdkmath.ZeroInt())
	require.ErrorIs(t, err, types.ErrInsufficientFunds)

	msg, err := r.FundMsg("uatom", sdkmath.NewInt(5))
	require.NoError(t, err)
	exec := msg.(types.WasmExecute)
	require.Equal(t, "dist1", exec.ContractAddr)
	require.JSONEq(t, `{"fund":{}}`, string(exec.Msg))
	require.Equal(t, "5uatom", exec.Funds[0].String())
}

func TestAllIsDescending(t *testing.T) {
	r := NewRegistry()
	r.Import(Genesis{Contracts: []Contract{
		{Denom: "uatom", Address: "a"},
		{Denom: "ustars", Address: "s"},
		{Denom: "ujuno", Address: "j"},
	}})
	all := r.All()
	require.Equal(t, []string{"ustars", "ujuno", "uatom"}, []string{all[0].Denom, all[1].Denom, all[2].Denom})
}
