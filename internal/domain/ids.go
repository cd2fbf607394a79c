package domain

import "strconv"

// ClientID identifies an account holder. It is a wrapper over the raw id
// for referential integrity: equality and map-key use only, no arithmetic.
type ClientID struct {
	id uint16
}

// NewClientID wraps a raw client id.
func NewClientID(id uint16) ClientID {
	return ClientID{id: id}
}

func (c ClientID) String() string {
	return strconv.FormatUint(uint64(c.id), 10)
}

// TxID identifies a transaction, globally unique across one input stream.
type TxID struct {
	id uint32
}

// NewTxID wraps a raw transaction id.
func NewTxID(id uint32) TxID {
	return TxID{id: id}
}

func (t TxID) String() string {
	return strconv.FormatUint(uint64(t.id), 10)
}
