package dialog

type State string

const (
	StateIdle State = "idle"

	// Список материалов
	StateMatList   State = "mat_list"   // экран списка (страница, поиск, сортировка)
	StateMatSearch State = "mat_search" // ввод строки поиска
	StateMatItem   State = "mat_item"   // карточка материала
	StateMatHist   State = "mat_hist"   // журнал корректировок остатка

	// Добавление материала
	StateMatAddName     State = "mat_add_name" // выбор названия из фиксированного списка
	StateMatAddUnit     State = "mat_add_unit" // подтверждение/ввод единицы
	StateMatAddQty      State = "mat_add_qty"
	StateMatAddSupplier State = "mat_add_supplier"
	StateMatAddDate     State = "mat_add_date"
	StateMatAddDesc     State = "mat_add_desc"
	StateMatAddConfirm  State = "mat_add_confirm"
	StateMatAddSaving   State = "mat_add_saving" // запрос создания в полёте, кнопка сохранения недоступна

	// Подтверждение паролем (правка/удаление)
	StateGatePassword State = "gate_password"

	// Редактирование после подтверждения
	StateMatEditPick  State = "mat_edit_pick"  // выбор поля
	StateMatEditValue State = "mat_edit_value" // ввод нового значения

	// Корректировка остатка
	StateMatStockDelta State = "mat_stock_delta"

	// Счета поставщиков
	StateInvList    State = "inv_list"
	StateInvItem    State = "inv_item"
	StateInvPayment State = "inv_payment" // ввод суммы оплаты (центы)

	// Пароль оператора
	StateSetPassword State = "set_password"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
