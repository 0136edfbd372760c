package abi

import (
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddr = common.HexToAddress("0xEAbCC110fAcBfebabC66Ad6f9E7B67288e720B59")

func TestSelector(t *testing.T) {
	tests := []struct {
		sig  string
		want string
	}{
		{"transfer(address,uint256)", "a9059cbb"},
		{"transferFrom(address,address,uint256)", "23b872dd"},
		{"nonce()", "affed0e0"},
		{"getOwners()", "a0e67e2b"},
		{"getThreshold()", "e75235b8"},
		{"swapOwner(address,address,address)", "e318b52b"},
		{"multiSend(bytes)", "8d80ff0a"},
	}
	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			sel := Selector(tt.sig)
			assert.Equal(t, tt.want, hex.EncodeToString(sel[:]))
		})
	}
}

func TestKeccak256Empty(t *testing.T) {
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256()))
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "transfer(address,uint256)", Signature("transfer", Address, Uint256))
	assert.Equal(t, "f(bytes32,address[],uint8,bytes)", Signature("f", Bytes32, AddressArray, Uint8, Bytes))
}

func TestEncodeAddress(t *testing.T) {
	enc, err := Encode(testAddr, Address)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("0", 24)+"eabcc110facbfebabc66ad6f9e7b67288e720b59", enc)
}

func TestEncodeUint(t *testing.T) {
	enc, err := Encode(uint256.NewInt(1), Uint256)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("0", 63)+"1", enc)

	enc, err = Encode(uint8(255), Uint8)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("0", 62)+"ff", enc)

	_, err = Encode(256, Uint8)
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	_, err = Encode(big.NewInt(-1), Uint256)
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	_, err = Encode("1", Uint256)
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestEncodeBytes(t *testing.T) {
	enc, err := EncodeValue(Bytes, []byte{0xab})
	require.NoError(t, err)
	require.Len(t, enc, 64)
	assert.Equal(t, byte(1), enc[31])
	assert.Equal(t, byte(0xab), enc[32])

	enc, err = EncodeValue(Bytes, nil)
	require.NoError(t, err)
	assert.Len(t, enc, 32)
}

func TestRoundTrip(t *testing.T) {
	allOnes := new(uint256.Int).SetAllOne()
	tests := []struct {
		name  string
		typ   Type
		value any
	}{
		{"address", Address, testAddr},
		{"zero address", Address, common.Address{}},
		{"uint8", Uint8, uint256.NewInt(200)},
		{"uint256 zero", Uint256, uint256.NewInt(0)},
		{"uint256 max", Uint256, allOnes},
		{"bytes empty", Bytes, []byte{}},
		{"bytes 1", Bytes, []byte{0x01}},
		{"bytes 32", Bytes, []byte(strings.Repeat("a", 32))},
		{"bytes 33", Bytes, []byte(strings.Repeat("b", 33))},
		{"bytes32", Bytes32, []byte(strings.Repeat("c", 32))},
		{"address[]", AddressArray, []common.Address{testAddr, {}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Encode(tt.value, tt.typ)
			require.NoError(t, err)
			dec, err := Decode("0x"+enc, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.value, dec)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		typ   Type
	}{
		{"short uint", "00ff", Uint256},
		{"non hex", strings.Repeat("zz", 32), Address},
		{"dirty address padding", "ff" + strings.Repeat("0", 62), Address},
		{"uint8 overflow", strings.Repeat("0", 60) + "0100", Uint8},
		{"bytes length beyond input", strings.Repeat("0", 62) + "40", Bytes},
		{"bytes missing padding", strings.Repeat("0", 63) + "1" + "ab", Bytes},
		{"bytes32 short", strings.Repeat("0", 62), Bytes32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input, tt.typ)
			var de *DecodeError
			require.True(t, errors.As(err, &de), "got %v", err)
			assert.Equal(t, tt.typ.String(), de.Type)
		})
	}
}

func TestEncodeArgsDynamicOffsets(t *testing.T) {
	data := []byte{0xde, 0xad}
	enc, err := EncodeArgs(AddressArg(testAddr), BytesArg(data), Uint8Arg(1))
	require.NoError(t, err)
	// head: address, offset, uint8; tail: length, data
	require.Len(t, enc, 5*32)
	assert.Equal(t, byte(0x60), enc[63])
	assert.Equal(t, byte(2), enc[127])

	out, err := DecodeArgs([]Type{Address, Bytes, Uint8}, enc)
	require.NoError(t, err)
	assert.Equal(t, testAddr, out[0])
	assert.Equal(t, data, out[1])
	assert.Equal(t, uint256.NewInt(1), out[2])
}

func TestDecodeArgsShortInput(t *testing.T) {
	_, err := DecodeArgs([]Type{Address, Uint256}, make([]byte, 32))
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 32, de.Offset)
}

func TestEncodeCall(t *testing.T) {
	call, err := EncodeCall("transfer(address,uint256)", AddressArg(testAddr), Uint256Arg(uint256.NewInt(10)))
	require.NoError(t, err)
	require.Len(t, call, 4+64)
	assert.Equal(t, "a9059cbb", hex.EncodeToString(call[:4]))
	assert.Equal(t, byte(10), call[67])

	_, err = EncodeCall("f(uint8)", Arg{Type: Uint8, Value: 300})
	assert.ErrorIs(t, err, ErrValueOutOfRange)

	assert.Panics(t, func() {
		MustEncodeCall("f(uint8)", Arg{Type: Uint8, Value: 300})
	})
}

func TestInvalidType(t *testing.T) {
	_, err := EncodeValue(Uint(7), 1)
	assert.ErrorIs(t, err, ErrInvalidType)
	_, err = EncodeValue(FixedBytes(33), []byte{})
	assert.ErrorIs(t, err, ErrInvalidType)
	_, err = EncodeValue(ArrayOf(Bytes), []any{})
	assert.ErrorIs(t, err, ErrInvalidType)
}
