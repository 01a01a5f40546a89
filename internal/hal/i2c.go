package hal

// I2CDevice performs a combined write-then-read transaction with one
// peripheral. Either slice may be empty.
type I2CDevice interface {
	Tx(w, r []byte) error
}
