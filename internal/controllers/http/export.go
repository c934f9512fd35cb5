package http

import (
	"net/http"

	"harvesthub/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
)

const timeLayout = "2006-01-02 15:04:05"

var exportHeaders = []string{
	"Order ID", "Customer ID", "Status", "Payment Status", "Payment Method",
	"Product ID", "Product", "Unit", "Quantity", "Price", "Subtotal",
	"Order Total", "City", "Pincode", "Created At",
}

// ExportFarmerOrders downloads the seller's orders as a spreadsheet with one
// row per order line.
func (h *Handler) ExportFarmerOrders(c *gin.Context) {
	orders, err := h.orders.ListForSeller(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	file, err := ordersWorkbook(orders)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to create Excel sheet"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")
	if err := file.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to write Excel file"})
	}
}

func ordersWorkbook(orders []domain.Order) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, o := range orders {
		for _, item := range o.Items {
			row := sheet.AddRow()
			row.AddCell().SetValue(o.ID)
			row.AddCell().SetValue(o.CustomerID)
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(string(o.PaymentStatus))
			row.AddCell().SetValue(string(o.PaymentMethod))
			row.AddCell().SetValue(item.ProductID)
			row.AddCell().SetValue(item.ProductName)
			row.AddCell().SetValue(string(item.Unit))
			row.AddCell().SetValue(item.Quantity)
			row.AddCell().SetValue(item.Price.StringFixed(2))
			row.AddCell().SetValue(item.Subtotal().StringFixed(2))
			row.AddCell().SetValue(o.TotalAmount.StringFixed(2))
			row.AddCell().SetValue(o.ShippingAddress.City)
			row.AddCell().SetValue(o.ShippingAddress.Pincode)
			row.AddCell().SetValue(o.CreatedAt.Format(timeLayout))
		}
	}
	return file, nil
}
