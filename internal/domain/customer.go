package domain

// Customer — владелец адресов и заказов. Ядро клиентов только читает.
type Customer struct {
	ID       int64
	FullName string
	Email    string
}

// Employee — сотрудник, оформивший заказ. Для ядра это внешняя сущность.
type Employee struct {
	ID   int64
	Name string
	Role string
}
