// internal/pkg/export/orders.go
package export

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
)

// ContentTypeXLSX is the MIME type of the workbook written by WriteOrders
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	moneyFormat = "0.00"
	timeLayout  = "2006-01-02 15:04:05"
)

var orderHeaders = []string{
	"Order Number", "Status", "User ID", "Items", "Subtotal", "Delivery Fee", "Total",
	"Payment Method", "Payment Status", "Delivery Date", "Slot", "City", "Pincode", "Placed At",
}

// WriteOrders writes the orders as a single-sheet workbook
func WriteOrders(w io.Writer, orders []order.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range orderHeaders {
		header.AddCell().SetString(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetString(o.OrderNumber)
		row.AddCell().SetString(string(o.Status))
		row.AddCell().SetInt(int(o.UserID))
		row.AddCell().SetInt(len(o.Items))
		row.AddCell().SetFloatWithFormat(o.Subtotal.InexactFloat64(), moneyFormat)
		row.AddCell().SetFloatWithFormat(o.DeliveryFee.InexactFloat64(), moneyFormat)
		row.AddCell().SetFloatWithFormat(o.Total.InexactFloat64(), moneyFormat)
		row.AddCell().SetString(string(o.Payment.Provider))
		row.AddCell().SetString(string(o.Payment.Status))
		row.AddCell().SetString(o.TimeSlot.Date)
		row.AddCell().SetString(o.TimeSlot.StartTime + "-" + o.TimeSlot.EndTime)
		row.AddCell().SetString(o.Address.City)
		row.AddCell().SetString(o.Address.Pincode)
		row.AddCell().SetString(o.CreatedAt.Format(timeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
