package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/config"
	"github.com/bitfantasy/nimo-pms/internal/notify"
	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services 服务集合
type Services struct {
	Auth        *AuthService
	User        *UserService
	Catalog     *CatalogService
	Building    *BuildingService
	Unit        *UnitService
	Tenant      *TenantService
	Contract    *ContractService
	Billing     *BillingService
	Occupancy   *OccupancyService
	Report      *ReportService
	Maintenance *MaintenanceService
	Image       *ImageService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	// 初始化MinIO客户端（未配置时图片功能降级为不可用）
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("minio init failed, image upload disabled", zap.Error(err))
			minioClient = nil
		}
	}

	notifier := notify.NewFeishuWebhook(cfg.Notify.FeishuWebhookURL, logger)
	imageSvc := NewImageService(minioClient, cfg.MinIO.Bucket, cfg.MinIO.PublicBaseURL, logger)
	occupancySvc := NewOccupancyService(repos.Building, repos.Level, repos.Unit, repos.Contract)

	return &Services{
		Auth:        NewAuthService(repos.User, rdb, cfg),
		User:        NewUserService(repos.User),
		Catalog:     NewCatalogService(repos.Catalog, rdb, logger),
		Building:    NewBuildingService(repos.Building, repos.Level),
		Unit:        NewUnitService(repos.Unit, repos.Level, repos.Building, repos.Catalog, imageSvc, logger),
		Tenant:      NewTenantService(repos.Tenant),
		Contract:    NewContractService(repos.Contract, repos.Unit, repos.Tenant),
		Billing:     NewBillingService(repos.Invoice, repos.Contract, notifier, logger),
		Occupancy:   occupancySvc,
		Report:      NewReportService(occupancySvc, repos.Invoice),
		Maintenance: NewMaintenanceService(repos.Maintenance, repos.Unit, notifier),
		Image:       imageSvc,
	}
}

// newID 生成 32 位实体 ID
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// UserService 用户服务
type UserService struct {
	repo *repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// ListAll 获取所有活跃用户
func (s *UserService) ListAll(ctx context.Context) ([]entity.User, error) {
	return s.repo.ListActive(ctx)
}

// Get 按 ID 获取用户
func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	return s.repo.FindByID(ctx, id)
}

// CatalogService 类型目录服务，列表走 Redis 读穿缓存
type CatalogService struct {
	repo   *repository.CatalogRepository
	rdb    *redis.Client
	logger *zap.Logger
}

const catalogCacheTTL = 10 * time.Minute

// NewCatalogService 创建类型目录服务
func NewCatalogService(repo *repository.CatalogRepository, rdb *redis.Client, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, rdb: rdb, logger: logger}
}

// cached 读穿缓存：命中直接返回，未命中回源后写缓存。
// 缓存故障只记日志，不影响主流程。
func (s *CatalogService) cached(ctx context.Context, key string, out any, load func() (any, error)) error {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			if json.Unmarshal(raw, out) == nil {
				return nil
			}
		}
	}

	data, err := load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return err
	}
	if s.rdb != nil {
		if err := s.rdb.Set(ctx, key, raw, catalogCacheTTL).Err(); err != nil {
			s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

// ListRoomTypes 房间类型列表
func (s *CatalogService) ListRoomTypes(ctx context.Context) ([]entity.RoomType, error) {
	var out []entity.RoomType
	err := s.cached(ctx, "pms:catalog:room_types", &out, func() (any, error) {
		return s.repo.ListRoomTypes(ctx)
	})
	return out, err
}

// ListSpaceTypes 空间类型列表
func (s *CatalogService) ListSpaceTypes(ctx context.Context) ([]entity.SpaceType, error) {
	var out []entity.SpaceType
	err := s.cached(ctx, "pms:catalog:space_types", &out, func() (any, error) {
		return s.repo.ListSpaceTypes(ctx)
	})
	return out, err
}

// ListHallTypes 活动厅类型列表
func (s *CatalogService) ListHallTypes(ctx context.Context) ([]entity.HallType, error) {
	var out []entity.HallType
	err := s.cached(ctx, "pms:catalog:hall_types", &out, func() (any, error) {
		return s.repo.ListHallTypes(ctx)
	})
	return out, err
}

// ListUtilityTypes 计费项目列表
func (s *CatalogService) ListUtilityTypes(ctx context.Context) ([]entity.UtilityType, error) {
	var out []entity.UtilityType
	err := s.cached(ctx, "pms:catalog:utility_types", &out, func() (any, error) {
		return s.repo.ListUtilityTypes(ctx)
	})
	return out, err
}

// BuildingService 楼宇/楼层服务
type BuildingService struct {
	buildingRepo *repository.BuildingRepository
	levelRepo    *repository.LevelRepository
}

// NewBuildingService 创建楼宇服务
func NewBuildingService(buildingRepo *repository.BuildingRepository, levelRepo *repository.LevelRepository) *BuildingService {
	return &BuildingService{buildingRepo: buildingRepo, levelRepo: levelRepo}
}

// GetBuilding 按 ID 获取楼宇
func (s *BuildingService) GetBuilding(ctx context.Context, id string) (*entity.Building, error) {
	return s.buildingRepo.FindByID(ctx, id)
}

// ListBuildings 楼宇列表
func (s *BuildingService) ListBuildings(ctx context.Context) ([]entity.Building, error) {
	return s.buildingRepo.List(ctx)
}

// GetLevel 按 ID 获取楼层
func (s *BuildingService) GetLevel(ctx context.Context, id string) (*entity.Level, error) {
	return s.levelRepo.FindByID(ctx, id)
}

// ListLevels 楼宇下的楼层列表
func (s *BuildingService) ListLevels(ctx context.Context, buildingID string) ([]entity.Level, error) {
	return s.levelRepo.ListByBuilding(ctx, buildingID)
}

// TenantService 租户服务
type TenantService struct {
	repo *repository.TenantRepository
}

// NewTenantService 创建租户服务
func NewTenantService(repo *repository.TenantRepository) *TenantService {
	return &TenantService{repo: repo}
}

// Create 新建租户
func (s *TenantService) Create(ctx context.Context, tenant *entity.Tenant) error {
	tenant.ID = newID()
	return s.repo.Create(ctx, tenant)
}

// Get 按 ID 获取租户
func (s *TenantService) Get(ctx context.Context, id string) (*entity.Tenant, error) {
	return s.repo.FindByID(ctx, id)
}

// List 租户列表
func (s *TenantService) List(ctx context.Context, keyword string, page, pageSize int) ([]entity.Tenant, int64, error) {
	return s.repo.List(ctx, keyword, page, pageSize)
}

// Update 更新租户
func (s *TenantService) Update(ctx context.Context, tenant *entity.Tenant) error {
	return s.repo.Update(ctx, tenant)
}

// MaintenanceService 维修工单服务
type MaintenanceService struct {
	repo     *repository.MaintenanceRepository
	unitRepo *repository.UnitRepository
	notifier *notify.FeishuWebhook
}

// NewMaintenanceService 创建维修工单服务
func NewMaintenanceService(repo *repository.MaintenanceRepository, unitRepo *repository.UnitRepository, notifier *notify.FeishuWebhook) *MaintenanceService {
	return &MaintenanceService{repo: repo, unitRepo: unitRepo, notifier: notifier}
}

// Create 新建工单，校验单元存在。入库成功后推送群通知。
func (s *MaintenanceService) Create(ctx context.Context, req *entity.MaintenanceRequest) error {
	unit, err := s.unitRepo.FindByID(ctx, req.UnitID)
	if err != nil {
		return err
	}
	req.ID = newID()
	if req.Priority == "" {
		req.Priority = "normal"
	}
	req.Status = entity.MaintenanceStatusOpen
	if err := s.repo.Create(ctx, req); err != nil {
		return err
	}

	_ = s.notifier.SendCard(ctx, notify.NewMaintenanceRequestCard(unit.UnitNumber, req.Title, req.Priority))
	return nil
}

// Get 按 ID 获取工单
func (s *MaintenanceService) Get(ctx context.Context, id string) (*entity.MaintenanceRequest, error) {
	return s.repo.FindByID(ctx, id)
}

// List 工单列表
func (s *MaintenanceService) List(ctx context.Context, unitID, status string, page, pageSize int) ([]entity.MaintenanceRequest, int64, error) {
	return s.repo.List(ctx, unitID, status, page, pageSize)
}

// UpdateStatus 推进工单状态
func (s *MaintenanceService) UpdateStatus(ctx context.Context, id, status string) (*entity.MaintenanceRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Status = status
	if status == entity.MaintenanceStatusResolved {
		now := time.Now()
		req.ResolvedAt = &now
	}
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
