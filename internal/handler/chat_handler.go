// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"

	"supplier-smart-go/internal/model"
	"supplier-smart-go/internal/service"
	"supplier-smart-go/pkg/log"
	"supplier-smart-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// ChatHandler 负责处理聊天连接与消息。
type ChatHandler struct {
	chatService service.ChatService
	userService service.UserService
	jwtManager  *token.JWTManager
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, userService service.UserService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// Handle 处理一个传入的 WebSocket 连接。
// 读循环天然保证同一连接上的消息严格串行：上一条回复发出前不读取下一条。
func (h *ChatHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的 token", "data": nil})
		return
	}

	user, err := h.userService.GetProfile(claims.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "无法获取用户信息", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("WebSocket 连接已建立，用户: %s", claims.Username)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("从 WebSocket 读取消息失败: %v", err)
			break
		}

		reply := h.chatService.HandleUserMessage(c.Request.Context(), user, string(message))

		if err := conn.WriteJSON(gin.H{"reply": reply}); err != nil {
			log.Warnf("向 WebSocket 写入回复失败: %v", err)
			break
		}
	}
}

// PostMessageRequest 定义了 REST 聊天 API 的请求体结构。
type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostMessage 处理 REST 形式的单条聊天消息。
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：content 不能为空",
		})
		return
	}

	userValue, _ := c.Get("user")
	user := userValue.(*model.User)

	reply := h.chatService.HandleUserMessage(c.Request.Context(), user, req.Content)

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"reply": reply},
	})
}

// GetPreferences 返回从当前用户的查询行为中学习到的偏好。
func (h *ChatHandler) GetPreferences(c *gin.Context) {
	userValue, _ := c.Get("user")
	user := userValue.(*model.User)

	prefs, err := h.chatService.Preferences(c.Request.Context(), user.ID)
	if err != nil {
		log.Error("GetPreferences: Failed to load preferences", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "获取用户偏好失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    prefs,
	})
}
