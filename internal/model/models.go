package model

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&Company{},
		&Privilege{},
		&Role{},
		&User{},
		&Product{},
		&StockHistory{},
		&Transaction{},
		&TransactionItem{},
	}
}
