package util

import "github.com/gin-gonic/gin"

const requestContextKey = "request"

const (
	NoticeSuccess = "success"
	NoticeInfo    = "info"
	NoticeError   = "error"
)

// Notice is a one-shot message delivered with the response that produced it.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// RequestContext carries the authenticated identity and pending notices of a
// single request. It lives on the gin context and dies with it.
type RequestContext struct {
	Claims  *Claims
	notices []Notice
}

func (r *RequestContext) Notify(level, message string) {
	r.notices = append(r.notices, Notice{Level: level, Message: message})
}

// drain hands out the pending notices exactly once.
func (r *RequestContext) drain() []Notice {
	n := r.notices
	r.notices = nil
	return n
}

// Request returns the request context, creating an anonymous one on first use.
func Request(c *gin.Context) *RequestContext {
	if v, ok := c.Get(requestContextKey); ok {
		if rc, ok := v.(*RequestContext); ok {
			return rc
		}
	}
	rc := &RequestContext{}
	c.Set(requestContextKey, rc)
	return rc
}

func AddNotice(c *gin.Context, level, message string) {
	Request(c).Notify(level, message)
}
