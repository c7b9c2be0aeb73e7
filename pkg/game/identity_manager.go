package game

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	identityObject   = "identity"
	identityProperty = "user"
)

// UserIdentity 本机玩家标识
// 首次启动时生成，之后所有事件上报都使用同一个 UserID
type UserIdentity struct {
	UserID    string    `yaml:"userId"`
	CreatedAt time.Time `yaml:"createdAt"`
}

// IdentityManager 玩家标识管理器
type IdentityManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，标识仅在本次运行内有效）
	identity     UserIdentity
}

// NewIdentityManager 加载已保存的玩家标识，不存在或损坏时生成新标识并保存
func NewIdentityManager(gdataManager *gdata.Manager) *IdentityManager {
	im := &IdentityManager{gdataManager: gdataManager}

	identity, err := im.load()
	if err != nil {
		log.Printf("[IdentityManager] Warning: %v (generating a new identity)", err)
	}
	if identity.UserID == "" {
		identity = newUserIdentity()
		im.identity = identity
		if err := im.save(); err != nil {
			log.Printf("[IdentityManager] Warning: %v", err)
		}
		log.Printf("[IdentityManager] Created user %s", identity.UserID)
	}
	im.identity = identity

	return im
}

func newUserIdentity() UserIdentity {
	return UserIdentity{
		UserID:    uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

func (im *IdentityManager) load() (UserIdentity, error) {
	if im.gdataManager == nil || !im.gdataManager.ObjectPropExists(identityObject, identityProperty) {
		return UserIdentity{}, nil
	}

	data, err := im.gdataManager.LoadObjectProp(identityObject, identityProperty)
	if err != nil {
		return UserIdentity{}, fmt.Errorf("failed to load identity: %w", err)
	}

	var identity UserIdentity
	if err := yaml.Unmarshal(data, &identity); err != nil {
		return UserIdentity{}, fmt.Errorf("failed to unmarshal identity: %w", err)
	}
	if _, err := uuid.Parse(identity.UserID); err != nil {
		return UserIdentity{}, fmt.Errorf("invalid stored user id %q: %w", identity.UserID, err)
	}
	return identity, nil
}

func (im *IdentityManager) save() error {
	if im.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(im.identity)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := im.gdataManager.SaveObjectProp(identityObject, identityProperty, data); err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	return nil
}

// UserID 返回玩家标识
func (im *IdentityManager) UserID() string {
	return im.identity.UserID
}

// Identity 返回完整的玩家标识
func (im *IdentityManager) Identity() UserIdentity {
	return im.identity
}
