package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ocna/restaurant-pos/utils"
)

// TicketLoggerMiddleware records the outcome of kitchen and payment ticket requests.
func TicketLoggerMiddleware(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		table := c.Param("name")
		utils.InfoLogger.Printf("Printing %s ticket for table: %s", kind, table)

		c.Next()

		switch status := c.Writer.Status(); {
		case status == http.StatusOK:
			utils.InfoLogger.Printf("%s ticket printed for table: %s", kind, table)
		case status == http.StatusConflict:
			utils.InfoLogger.Printf("No new items for %s ticket on table: %s", kind, table)
		default:
			utils.ErrorLogger.Printf("Failed to print %s ticket for table: %s (status %d)", kind, table, status)
		}
	}
}
