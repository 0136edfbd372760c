package safe

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// RequestType tags gateway transfer payloads.
type RequestType string

const (
	RequestEther  RequestType = "Ether"
	RequestErc20  RequestType = "Erc20"
	RequestErc721 RequestType = "Erc721"
)

// TransferRequest is a signed transfer ready for gateway submission.
type TransferRequest interface {
	RequestType() RequestType
	Hash() string
}

// SendEthRequest proposes a native currency transfer.
type SendEthRequest struct {
	Receiver              common.Address `json:"receiver"`
	Sender                common.Address `json:"sender"`
	Value                 string         `json:"value"`
	TransactionHash       string         `json:"transactionHash"`
	SignedTransactionHash string         `json:"signedTransactionHash"`
	Nonce                 string         `json:"nonce"`
	Type                  RequestType    `json:"type"`
}

// SendErc20Request proposes a token transfer; Receiver is the token contract.
type SendErc20Request struct {
	Receiver              common.Address `json:"receiver"`
	Sender                common.Address `json:"sender"`
	Data                  string         `json:"data"`
	TransactionHash       string         `json:"transactionHash"`
	SignedTransactionHash string         `json:"signedTransactionHash"`
	Nonce                 string         `json:"nonce"`
	Type                  RequestType    `json:"type"`
}

// SendErc721Request proposes a collectible transfer; Receiver is the token contract.
type SendErc721Request struct {
	Receiver              common.Address `json:"receiver"`
	Sender                common.Address `json:"sender"`
	Data                  string         `json:"data"`
	TransactionHash       string         `json:"transactionHash"`
	SignedTransactionHash string         `json:"signedTransactionHash"`
	Nonce                 string         `json:"nonce"`
	Type                  RequestType    `json:"type"`
}

func (r SendEthRequest) RequestType() RequestType    { return RequestEther }
func (r SendErc20Request) RequestType() RequestType  { return RequestErc20 }
func (r SendErc721Request) RequestType() RequestType { return RequestErc721 }

func (r SendEthRequest) Hash() string    { return r.TransactionHash }
func (r SendErc20Request) Hash() string  { return r.TransactionHash }
func (r SendErc721Request) Hash() string { return r.TransactionHash }

// ToSendEthRequest builds the gateway payload for a signed native transfer.
func (tx SafeTransaction) ToSendEthRequest(sender common.Address, hash [32]byte, sig Signature) SendEthRequest {
	return SendEthRequest{
		Receiver:              tx.To,
		Sender:                sender,
		Value:                 tx.Value.Dec(),
		TransactionHash:       hexutil.Encode(hash[:]),
		SignedTransactionHash: sig.Hex(),
		Nonce:                 tx.Nonce.Dec(),
		Type:                  RequestEther,
	}
}

func (tx SafeTransaction) ToSendErc20Request(sender common.Address, hash [32]byte, sig Signature) SendErc20Request {
	return SendErc20Request{
		Receiver:              tx.To,
		Sender:                sender,
		Data:                  hexutil.Encode(tx.Data),
		TransactionHash:       hexutil.Encode(hash[:]),
		SignedTransactionHash: sig.Hex(),
		Nonce:                 tx.Nonce.Dec(),
		Type:                  RequestErc20,
	}
}

func (tx SafeTransaction) ToSendErc721Request(sender common.Address, hash [32]byte, sig Signature) SendErc721Request {
	return SendErc721Request{
		Receiver:              tx.To,
		Sender:                sender,
		Data:                  hexutil.Encode(tx.Data),
		TransactionHash:       hexutil.Encode(hash[:]),
		SignedTransactionHash: sig.Hex(),
		Nonce:                 tx.Nonce.Dec(),
		Type:                  RequestErc721,
	}
}

// CoreTransactionRequest is a transaction-service proposal carrying every
// SafeTransaction field. Integers are decimal strings.
type CoreTransactionRequest struct {
	To                      common.Address `json:"to"`
	Value                   string         `json:"value"`
	Data                    string         `json:"data"`
	Nonce                   string         `json:"nonce"`
	Operation               string         `json:"operation"`
	SafeTxGas               string         `json:"safeTxGas"`
	BaseGas                 string         `json:"baseGas"`
	GasPrice                string         `json:"gasPrice"`
	GasToken                common.Address `json:"gasToken"`
	RefundReceiver          common.Address `json:"refundReceiver"`
	ContractTransactionHash string         `json:"contractTransactionHash"`
	Sender                  common.Address `json:"sender"`
	Signature               string         `json:"signature"`
}

func (tx SafeTransaction) ToCoreRequest(sender common.Address, hash [32]byte, sig Signature) CoreTransactionRequest {
	return CoreTransactionRequest{
		To:                      tx.To,
		Value:                   tx.Value.Dec(),
		Data:                    hexutil.Encode(tx.Data),
		Nonce:                   tx.Nonce.Dec(),
		Operation:               strconv.FormatUint(uint64(tx.Operation), 10),
		SafeTxGas:               tx.SafeTxGas.Dec(),
		BaseGas:                 tx.BaseGas.Dec(),
		GasPrice:                tx.GasPrice.Dec(),
		GasToken:                tx.GasToken,
		RefundReceiver:          tx.RefundReceiver,
		ContractTransactionHash: hexutil.Encode(hash[:]),
		Sender:                  sender,
		Signature:               sig.Hex(),
	}
}
