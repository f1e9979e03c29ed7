package user

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName 承载用户身份，值是一个UUID v7
	CookieName = "athlete-id"
	// CookieMaxAge 一年；身份不做认证，丢失cookie即视为新用户
	CookieMaxAge = 365 * 24 * 60 * 60
	// UserIDKey 是身份在gin上下文中的键
	UserIDKey = "userID"
)

// EnsureUserCookieMiddleware 保证每个请求者都持有格式合法的身份cookie。
// 首次访问或cookie被篡改时签发一个新的临时身份；
// 临时身份在第一次成功提交活动时才会被激活持久化（见ActivateUser）。
func EnsureUserCookieMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		current, err := c.Cookie(CookieName)
		if err == nil && IsValidUUID(current) {
			c.Next()
			return
		}
		if err != nil && err != http.ErrNoCookie {
			fmt.Printf("读取身份cookie失败: %v\n", err)
		} else if err == nil {
			fmt.Printf("检测到格式非法的身份cookie: %q，将重新签发\n", current)
		}

		issued, genErr := CreateProvisionalUser()
		if genErr != nil {
			fmt.Printf("签发临时身份失败: %v\n", genErr)
		} else {
			c.SetCookie(CookieName, issued, CookieMaxAge, "/", "", false, true)
		}
		c.Next()
	}
}

// LoadUserMiddleware 把身份cookie的值放入gin上下文，供各处理器读取。
// 这里不校验UUID格式，需要身份的处理器自行决定如何处理非法值。
func LoadUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := c.Cookie(CookieName)
		c.Set(UserIDKey, userID)
		c.Next()
	}
}
