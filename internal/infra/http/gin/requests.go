package ginserver

import (
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func parseDate(raw string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// dateRangeQuery reads the start_date/end_date query pair used by quotes
// and availability checks.
func dateRangeQuery(c *gin.Context) (start, end time.Time, ok bool) {
	start, ok = parseDate(c.Query("start_date"))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok = parseDate(c.Query("end_date"))
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page"))
	limit, _ = strconv.Atoi(c.Query("limit"))
	return page, limit
}
