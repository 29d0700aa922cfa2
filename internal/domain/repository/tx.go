package repository

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Stocks         StockRepository
	Products       ProductRepository
	Movements      InventoryMovementRepository
	Plans          ProductionPlanRepository
	Jobs           JobCardRepository
	Orders         OrderRepository
	PurchaseOrders PurchaseOrderRepository
	Sequences      SequenceRepository
}
