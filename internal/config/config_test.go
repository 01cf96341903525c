package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldPolicyIncludesByDefault(t *testing.T) {
	fp := NewFieldPolicy("")
	assert.True(t, fp.Includes(FieldBlockBits))
}

func TestFieldPolicyExcludesListedFields(t *testing.T) {
	fp := NewFieldPolicy(" tx.payload, tx_in.signature_script ,")
	assert.False(t, fp.Includes(FieldTransactionPayload))
	assert.False(t, fp.Includes(FieldTxInSignatureScript))
	assert.True(t, fp.Includes(FieldBlockBits))
}

func TestParseDisableList(t *testing.T) {
	gates := ParseDisableList("resolve-addresses, transactions-table,")
	assert.True(t, gates[FeatureResolveAddresses])
	assert.True(t, gates[FeatureTransactionsTable])
	assert.False(t, gates[FeatureBlocksTable])
}

func TestParseDisableListEmpty(t *testing.T) {
	gates := ParseDisableList("")
	assert.Empty(t, gates)
}

func TestConfigDisabled(t *testing.T) {
	cfg := Config{DisabledFeatures: ParseDisableList("blocks-table")}
	assert.True(t, cfg.Disabled(FeatureBlocksTable))
	assert.False(t, cfg.Disabled(FeatureTransactionsTable))
}

func TestConfigValidate(t *testing.T) {
	base := Config{RPCURL: "grpc://node:16110", DatabaseURL: "user:pass@tcp(db)/kaspa", BatchScale: 1}
	assert.NoError(t, base.Validate())

	missingRPC := base
	missingRPC.RPCURL = ""
	assert.Error(t, missingRPC.Validate())

	missingDB := base
	missingDB.DatabaseURL = ""
	assert.Error(t, missingDB.Validate())

	badScaleLow := base
	badScaleLow.BatchScale = 0.01
	assert.Error(t, badScaleLow.Validate())

	badScaleHigh := base
	badScaleHigh.BatchScale = 11
	assert.Error(t, badScaleHigh.Validate())
}

func TestNetworkParams(t *testing.T) {
	bps, tpsMax := NetworkParams("kaspa")
	assert.Equal(t, 10.0, bps)
	assert.Equal(t, 3000.0, tpsMax)

	bps, tpsMax = NetworkParams("kaspadev")
	assert.Equal(t, 1.0, bps)
	assert.Equal(t, 300.0, tpsMax)

	bps, tpsMax = NetworkParams("some-unknown-network")
	assert.Equal(t, 1.0, bps)
	assert.Equal(t, 300.0, tpsMax)
}
