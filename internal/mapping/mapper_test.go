package mapping

import (
	"testing"

	"github.com/simply-kaspa/indexer-go/internal/config"
	"github.com/simply-kaspa/indexer-go/internal/dbtype"
	"github.com/simply-kaspa/indexer-go/internal/rpcclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashN(n byte) dbtype.Hash {
	var h dbtype.Hash
	h[0] = n
	return h
}

func sampleBlock() *rpcclient.Block {
	return &rpcclient.Block{
		Header: rpcclient.BlockHeader{
			Hash:                 hashN(1),
			Version:              1,
			ParentsByLevel:       [][]dbtype.Hash{{hashN(2), hashN(3)}},
			HashMerkleRoot:       hashN(4),
			AcceptedIDMerkleRoot: hashN(5),
			UTXOCommitment:       hashN(6),
			Timestamp:            1000,
			Bits:                 486604799,
			Nonce:                dbtype.VarBytes{1, 2, 3, 4, 5, 6, 7, 8},
			DAAScore:             42,
			BlueWork:             dbtype.VarBytes{9, 9},
			PruningPoint:         hashN(7),
			BlueScore:            99,
		},
		Verbose: rpcclient.VerboseBlockData{
			SelectedParentHash:  hashN(2),
			MergeSetBluesHashes: []dbtype.Hash{hashN(2)},
			MergeSetRedsHashes:  []dbtype.Hash{hashN(3)},
			TransactionIDs:      []dbtype.Hash{hashN(10)},
		},
	}
}

func TestMapBlockIncludesAllFieldsByDefault(t *testing.T) {
	m := New(config.NewFieldPolicy(""))
	b := sampleBlock()

	row := m.MapBlock(b)

	assert.Equal(t, b.Header.Hash, row.Hash)
	require.NotNil(t, row.AcceptedIDMerkleRoot)
	assert.Equal(t, b.Header.AcceptedIDMerkleRoot, *row.AcceptedIDMerkleRoot)
	require.NotNil(t, row.SelectedParentHash)
	assert.Equal(t, b.Verbose.SelectedParentHash, *row.SelectedParentHash)
	require.NotNil(t, row.Bits)
	assert.Equal(t, int64(486604799), *row.Bits)
	require.NotNil(t, row.BlueScore)
	assert.Equal(t, int64(99), *row.BlueScore)
	assert.Equal(t, dbtype.VarBytes{9, 9}, row.BlueWork)
	require.NotNil(t, row.DAAScore)
	assert.Equal(t, int64(42), *row.DAAScore)
	require.NotNil(t, row.HashMerkleRoot)
	assert.Equal(t, b.Header.HashMerkleRoot, *row.HashMerkleRoot)
	assert.Equal(t, dbtype.VarBytes(b.Header.Nonce), row.Nonce)
	require.NotNil(t, row.PruningPoint)
	assert.Equal(t, b.Header.PruningPoint, *row.PruningPoint)
	require.NotNil(t, row.Timestamp)
	assert.Equal(t, int64(1000), *row.Timestamp)
	require.NotNil(t, row.UTXOCommitment)
	assert.Equal(t, b.Header.UTXOCommitment, *row.UTXOCommitment)
	require.NotNil(t, row.Version)
	assert.Equal(t, int16(1), *row.Version)
	assert.NotNil(t, row.MergeSetBluesHashes)
	assert.NotNil(t, row.MergeSetRedsHashes)
}

func TestMapBlockExcludesConfiguredFields(t *testing.T) {
	m := New(config.NewFieldPolicy("block.bits,block.nonce,block.hash_merkle_root,block.blue_score"))
	b := sampleBlock()

	row := m.MapBlock(b)

	assert.Nil(t, row.Bits)
	assert.Nil(t, row.Nonce)
	assert.Nil(t, row.HashMerkleRoot)
	assert.Nil(t, row.BlueScore)
}

func TestMapBlockParentsExpandsLevelZero(t *testing.T) {
	m := New(config.NewFieldPolicy(""))
	b := sampleBlock()

	rows := m.MapBlockParents(b)

	require.Len(t, rows, 2)
	assert.Equal(t, b.Header.Hash, rows[0].BlockHash)
	assert.Equal(t, hashN(2), rows[0].ParentHash)
	assert.Equal(t, hashN(3), rows[1].ParentHash)
}

func TestMapBlockParentsEmptyWhenNoParents(t *testing.T) {
	m := New(config.NewFieldPolicy(""))
	b := sampleBlock()
	b.Header.ParentsByLevel = nil

	assert.Nil(t, m.MapBlockParents(b))
}

func sampleTransaction() *rpcclient.Transaction {
	return &rpcclient.Transaction{
		SubnetworkID: "0000000000000000000000000000000000000000",
		Mass:         1234,
		Payload:      []byte{0xde, 0xad},
		BlockTime:    5000,
		Verbose: &rpcclient.VerboseTransactionData{
			TransactionID: hashN(20),
			Hash:          hashN(21),
			BlockHash:     hashN(1),
		},
		Inputs: []rpcclient.TransactionInput{
			{
				PreviousOutpoint: rpcclient.Outpoint{TransactionID: hashN(30), Index: 1},
				SignatureScript:  []byte{0x01},
				SigOpCount:       1,
			},
		},
		Outputs: []rpcclient.TransactionOutput{
			{
				Amount:          100,
				ScriptPublicKey: []byte{0x02},
				Verbose:         &rpcclient.VerboseOutputData{ScriptPublicKeyAddress: "kaspa:qqtest"},
			},
			{
				Amount:          200,
				ScriptPublicKey: []byte{0x03},
				Verbose:         nil,
			},
		},
	}
}

func TestMapTransactionIncludesAllFieldsByDefault(t *testing.T) {
	m := New(config.NewFieldPolicy(""))
	tx := sampleTransaction()

	row := m.MapTransaction(tx, 7)

	assert.Equal(t, tx.Verbose.TransactionID, row.TransactionID)
	assert.Equal(t, int16(7), row.SubnetworkID)
	assert.Equal(t, tx.BlockTime, row.BlockTime)
	require.NotNil(t, row.Hash)
	assert.Equal(t, tx.Verbose.Hash, *row.Hash)
	require.NotNil(t, row.Mass)
	assert.Equal(t, int32(1234), *row.Mass)
	assert.Equal(t, dbtype.VarBytes(tx.Payload), row.Payload)
}

func TestMapTransactionOmitsZeroMass(t *testing.T) {
	m := New(config.NewFieldPolicy(""))
	tx := sampleTransaction()
	tx.Mass = 0

	row := m.MapTransaction(tx, 1)
	assert.Nil(t, row.Mass)
}

func TestMapTransactionExcludesConfiguredFields(t *testing.T) {
	m := New(config.NewFieldPolicy("tx.hash,tx.payload"))
	tx := sampleTransaction()

	row := m.MapTransaction(tx, 1)
	assert.Nil(t, row.Hash)
	assert.Nil(t, row.Payload)
}

func TestMapBlockTransaction(t *testing.T) {
	m := New(config.NewFieldPolicy(""))
	tx := sampleTransaction()

	row := m.MapBlockTransaction(tx)
	assert.Equal(t, tx.Verbose.BlockHash, row.BlockHash)
	assert.Equal(t, tx.Verbose.TransactionID, row.TransactionID)
}

func TestMapTransactionInputs(t *testing.T) {
	m := New(config.NewFieldPolicy(""))
	tx := sampleTransaction()

	rows := m.MapTransactionInputs(tx)
	require.Len(t, rows, 1)
	assert.Equal(t, tx.Verbose.TransactionID, rows[0].TransactionID)
	assert.Equal(t, int16(0), rows[0].Index)
	assert.Equal(t, hashN(30), rows[0].PreviousOutpointHash)
	assert.Equal(t, int16(1), rows[0].PreviousOutpointIndex)
	assert.Equal(t, dbtype.VarBytes{0x01}, rows[0].SignatureScript)
	require.NotNil(t, rows[0].SigOpCount)
	assert.Equal(t, int16(1), *rows[0].SigOpCount)
}

func TestMapTransactionInputsExcludesConfiguredFields(t *testing.T) {
	m := New(config.NewFieldPolicy("tx_in.signature_script,tx_in.sig_op_count"))
	tx := sampleTransaction()

	rows := m.MapTransactionInputs(tx)
	require.Len(t, rows, 1)
	assert.Nil(t, []byte(rows[0].SignatureScript))
	assert.Nil(t, rows[0].SigOpCount)
}

func TestMapTransactionOutputs(t *testing.T) {
	m := New(config.NewFieldPolicy(""))
	tx := sampleTransaction()

	rows := m.MapTransactionOutputs(tx)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(100), rows[0].Amount)
	require.NotNil(t, rows[0].ScriptPublicKeyAddress)
	assert.Equal(t, "kaspa:qqtest", *rows[0].ScriptPublicKeyAddress)
	assert.Nil(t, rows[1].ScriptPublicKeyAddress)
}

func TestMapTransactionOutputsAddressSkipsUnresolved(t *testing.T) {
	m := New(config.NewFieldPolicy(""))
	tx := sampleTransaction()

	rows := m.MapTransactionOutputsAddress(tx)
	require.Len(t, rows, 1)
	assert.Equal(t, "kaspa:qqtest", rows[0].Address)
	assert.Equal(t, tx.Verbose.TransactionID, rows[0].TransactionID)
}

func TestMapScriptTransactions(t *testing.T) {
	m := New(config.NewFieldPolicy(""))
	tx := sampleTransaction()

	rows := m.MapScriptTransactions(tx)
	require.Len(t, rows, 2)
	assert.Equal(t, dbtype.VarBytes{0x02}, rows[0].ScriptPublicKey)
	assert.Equal(t, dbtype.VarBytes{0x03}, rows[1].ScriptPublicKey)
}
