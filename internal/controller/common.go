package controller

import (
	"learnhub_backend/internal/service"
	"learnhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func currentActor(ctx *gin.Context) service.Actor {
	return service.ActorFromClaims(util.GetUserFromContext(ctx))
}

// created picks the notice for an idempotent create-if-absent result.
func created(ctx *gin.Context, ok bool, fresh, existing string) {
	if ok {
		util.AddNotice(ctx, util.NoticeSuccess, fresh)
	} else {
		util.AddNotice(ctx, util.NoticeInfo, existing)
	}
}
