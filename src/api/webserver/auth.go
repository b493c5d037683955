package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sauti-platform/sauti/src/api/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Auth struct {
	db        *gorm.DB
	jwtSecret []byte
}

func NewAuth(db *gorm.DB, secret []byte) Auth {
	return Auth{db: db, jwtSecret: secret}
}

func (a Auth) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name"     binding:"required"`
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	user := types.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         types.RoleCitizen,
		Phone:        req.Phone,
		NotifyBySMS:  req.Phone != "",
	}
	if err := a.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"err": "email already registered"})
		return
	}

	token, err := issueJWT(user.ID, user.Role, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": gin.H{"id": user.ID, "name": user.Name, "role": user.Role}})
}

func (a Auth) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var user types.User
	if err := a.db.First(&user, "email = ?", req.Email).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid credentials"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid credentials"})
		return
	}

	token, err := issueJWT(user.ID, user.Role, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": gin.H{"id": user.ID, "name": user.Name, "role": user.Role}})
}
