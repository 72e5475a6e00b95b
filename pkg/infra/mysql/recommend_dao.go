package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"optima/recsync/pkg/entity"
	"optima/recsync/pkg/model"
)

// RecommendDAO 推荐数据访问对象
type RecommendDAO struct {
	db *gorm.DB
}

// NewRecommendDAO 创建 RecommendDAO 实例
func NewRecommendDAO(dsn string) (*RecommendDAO, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &RecommendDAO{
		db: db,
	}, nil
}

// GetUserByID 根据用户 ID 获取用户，不存在时返回 (nil, nil)
func (dao *RecommendDAO) GetUserByID(ctx context.Context, userID string) (*entity.User, error) {
	var user entity.User
	result := dao.db.WithContext(ctx).Where("id = ?", userID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", result.Error)
	}
	return &user, nil
}

// GetIDPByID 根据 IDP ID 获取发展计划，不存在时返回 (nil, nil)
func (dao *RecommendDAO) GetIDPByID(ctx context.Context, idpID string) (*entity.IDP, error) {
	var idp entity.IDP
	result := dao.db.WithContext(ctx).Where("id = ?", idpID).First(&idp)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get idp: %w", result.Error)
	}
	return &idp, nil
}

// ListSkills 获取全量技能
func (dao *RecommendDAO) ListSkills(ctx context.Context) ([]entity.Skill, error) {
	var skills []entity.Skill
	if err := dao.db.WithContext(ctx).Find(&skills).Error; err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	return skills, nil
}

// ListResources 获取全量资源
func (dao *RecommendDAO) ListResources(ctx context.Context) ([]entity.Resource, error) {
	var resources []entity.Resource
	if err := dao.db.WithContext(ctx).Find(&resources).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return resources, nil
}

// UpdateRecommendations 更新 IDP 的推荐结果
// 参数：
//   - ctx: 上下文
//   - idpID: IDP ID
//   - recs: 推荐结果列表（已截断排序）
//   - status: IDP 状态（active/failed）
//
// 推荐结果与状态在同一条 UPDATE 内落库，updated_at 随之刷新
func (dao *RecommendDAO) UpdateRecommendations(
	ctx context.Context,
	idpID string,
	recs []model.SuggestedResource,
	status string,
) error {
	// 序列化推荐结果为 JSON
	recsJSON, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	// 构造更新字段
	updates := map[string]interface{}{
		"status":              status,
		"suggested_resources": recsJSON,
	}

	// 执行更新
	dbResult := dao.db.WithContext(ctx).
		Model(&entity.IDP{}).
		Where("id = ?", idpID).
		Updates(updates)

	if dbResult.Error != nil {
		return fmt.Errorf("failed to update idp: %w", dbResult.Error)
	}

	if dbResult.RowsAffected == 0 {
		return fmt.Errorf("idp not found: %s", idpID)
	}

	return nil
}

// UpdateIDPStatus 仅更新 IDP 状态（实体缺失等无结果可写的场景）
func (dao *RecommendDAO) UpdateIDPStatus(ctx context.Context, idpID string, status string) error {
	dbResult := dao.db.WithContext(ctx).
		Model(&entity.IDP{}).
		Where("id = ?", idpID).
		Update("status", status)

	if dbResult.Error != nil {
		return fmt.Errorf("failed to update idp status: %w", dbResult.Error)
	}

	if dbResult.RowsAffected == 0 {
		return fmt.Errorf("idp not found: %s", idpID)
	}

	return nil
}

// Close 关闭数据库连接
func (dao *RecommendDAO) Close() error {
	sqlDB, err := dao.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
