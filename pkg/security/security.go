package security

import (
	"net/http"
	"sync"
	"time"

	"quizcraft_backend/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Policy 汇总对外暴露面的访问控制：CORS 白名单与按 IP 限流。
// 参数可通过 Apply 热更新，中间件每次请求读取当前值。
type Policy struct {
	mu          sync.Mutex
	origins     map[string]bool
	maxRequests int
	window      time.Duration
	visitors    map[string]*visitor
}

// visitor 包装限流器和最后活跃时间，用于定期清理
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewPolicy(cfg *config.Config) *Policy {
	p := &Policy{visitors: make(map[string]*visitor)}
	p.Apply(cfg)
	go p.cleanupLoop()
	return p
}

// Apply 整体替换 CORS 白名单与限流参数。
// 限流参数变化时丢弃已有访客条目，按新参数重建限流器。
func (p *Policy) Apply(cfg *config.Config) {
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}

	origins := make(map[string]bool, len(cfg.CORS.AllowedOrigins))
	for _, o := range cfg.CORS.AllowedOrigins {
		origins[o] = true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.origins = origins
	if maxRequests != p.maxRequests || window != p.window {
		p.maxRequests = maxRequests
		p.window = window
		p.visitors = make(map[string]*visitor)
	}
}

func (p *Policy) allowOrigin(origin string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.origins[origin]
}

func (p *Policy) allow(ip string) bool {
	p.mu.Lock()
	v, ok := p.visitors[ip]
	if !ok {
		v = &visitor{
			limiter: rate.NewLimiter(rate.Every(p.window/time.Duration(p.maxRequests)), p.maxRequests),
		}
		p.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	p.mu.Unlock()

	return v.limiter.Allow()
}

func (p *Policy) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		p.mu.Lock()
		expiry := p.window * 3
		if expiry < time.Minute {
			expiry = time.Minute
		}
		for ip, v := range p.visitors {
			if time.Since(v.lastSeen) > expiry {
				delete(p.visitors, ip)
			}
		}
		p.mu.Unlock()
	}
}

// CORS 中间件 仅放行白名单中的Origin，支持带凭证的跨域请求
func (p *Policy) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if origin != "" && p.allowOrigin(origin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RateLimiter 限流中间件 按客户端IP限流，超限返回429
func (p *Policy) RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !p.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// Secure 中间件
func Secure() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 防止MIME嗅探
		c.Header("X-Content-Type-Options", "nosniff")
		// 防止点击劫持
		c.Header("X-Frame-Options", "DENY")
		// XSS保护
		c.Header("X-XSS-Protection", "1; mode=block")
		// HSTS
		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		}

		c.Next()
	}
}
