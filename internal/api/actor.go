package api

import (
	"context"
	"net/http"

	"github.com/Franklyn101/sagbama-land-authentication/internal/auth"
	"github.com/Franklyn101/sagbama-land-authentication/internal/service"
	"github.com/gin-gonic/gin"
)

// ActorMiddleware 操作人中间件
// 身份源自网关侧的 X-Actor 头(邮箱), 在这里解析为静态表中的角色身份
// 匿名请求放行, 由 RequireRole 决定单个路由是否拒绝
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader("X-Actor")
		if email == "" {
			c.Next()
			return
		}

		user, ok := auth.GetUserByEmail(email)
		if !ok {
			Error(c, http.StatusUnauthorized, "unknown actor", email)
			c.Abort()
			return
		}

		c.Set("actor_id", user.Email)
		c.Set("actor_name", user.Name)
		c.Set("actor_role", string(user.Role))

		// 注入请求上下文, 供服务层审计日志读取
		ctx := context.WithValue(c.Request.Context(), service.ContextKeyActorID, user.Email)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole 角色检查中间件
// 未携带身份返回 401, 角色不在允许列表返回 403
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorRole := c.GetString("actor_role")
		if actorRole == "" {
			Error(c, http.StatusUnauthorized, "actor required", "missing X-Actor header")
			c.Abort()
			return
		}

		for _, role := range roles {
			if string(role) == actorRole {
				c.Next()
				return
			}
		}

		Error(c, http.StatusForbidden, "insufficient role", actorRole)
		c.Abort()
	}
}
