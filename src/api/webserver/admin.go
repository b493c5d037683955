package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sauti-platform/sauti/src/queue"
)

type Admin struct {
	q *queue.Queue
}

func NewAdmin(q *queue.Queue) Admin {
	return Admin{q: q}
}

// DeadJobs lists jobs that exhausted their retry budget, for manual
// inspection and replay.
func (a Admin) DeadJobs(c *gin.Context) {
	jobs, err := a.q.DeadJobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}
