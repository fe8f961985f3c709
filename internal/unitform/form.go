package unitform

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 单元类型（与后端 entity 约定一致）
const (
	UnitTypeRoom  = "ROOM"
	UnitTypeSpace = "SPACE"
	UnitTypeHall  = "HALL"
)

// 图片数量上限
const MaxImages = 5

// 单元面积边界（平方米）
const (
	MinUnitSpace = 0.1
	MaxUnitSpace = 10000
)

// 默认单元编号前缀
const DefaultNumberPrefix = "UN-"

// 错误字段键
const (
	FieldUnitNumber = "unitNumber"
	FieldUnitSpace  = "unitSpace"
	FieldRentalFee  = "rentalFee"
	FieldTypeRef    = "typeRef"
	FieldLevel      = "levelId"
)

// RemoteImage 已上传到后端的图片引用
type RemoteImage struct {
	URL string
}

// Snapshot 表单打开时的单元快照，作为差异基线。
// UtilityTypeIDs 允许包含重复项，加载时做防御性去重。
type Snapshot struct {
	UnitID         string
	UnitNumber     string
	UnitType       string
	RoomTypeID     string
	SpaceTypeID    string
	HallTypeID     string
	UnitSpace      float64
	RentalFee      float64
	HasMeter       bool
	LevelID        string
	UtilityTypeIDs []string
	Images         []RemoteImage
}

// markedImage 标记删除的图片，记录原位置以便恢复
type markedImage struct {
	image     RemoteImage
	origIndex int
}

// Form 单元编辑表单引擎。
// 所有编辑保存在本地状态，直到显式 Submit 才向后端提交；
// Cancel 丢弃全部本地修改并恢复快照。
type Form struct {
	backend Backend
	logger  *zap.Logger
	prefix  string

	mu sync.Mutex

	loaded   bool
	snapshot Snapshot

	// 标量字段；面积与租金保留原始输入文本以区分「必填/非数字/越界」
	unitNumber  string
	unitType    string
	roomTypeID  string
	spaceTypeID string
	hallTypeID  string
	unitSpace   string
	rentalFee   string
	hasMeter    bool
	levelID     string

	// 计费项目选择：集合语义，current 永不指向 original
	originalUtilities map[string]struct{}
	currentUtilities  map[string]struct{}

	// 图片三态：现存 / 本地暂存 / 标记删除
	existingImages []RemoteImage
	stagedImages   []*StagedImage
	removedImages  []markedImage

	// 参考数据（Load 时并发拉取）
	roomTypes    []TypeOption
	spaceTypes   []TypeOption
	hallTypes    []TypeOption
	utilityTypes []UtilityOption

	// 容量校验上下文（加载/切换楼层时拉取，校验本身同步）；
	// snapCtx 保留快照楼层的上下文，Cancel 时恢复
	level            *LevelInfo
	building         *BuildingInfo
	origBuildingID   string
	levelUnitCount   int
	buildingUsedArea float64
	snapCtx          *levelContext

	errors          map[string]string
	duplicateNumber bool

	// 唯一性检查：进行中时编号与楼层字段禁用；
	// generation 用于丢弃过期响应（取代前端实现里未处理的竞态）
	checking  bool
	checkGen  int
	checkDone chan struct{}

	submitting bool
}

// Option 表单可选配置
type Option func(*Form)

// WithNumberPrefix 覆盖单元编号前缀
func WithNumberPrefix(prefix string) Option {
	return func(f *Form) { f.prefix = prefix }
}

// New 创建表单引擎
func New(backend Backend, logger *zap.Logger, opts ...Option) *Form {
	f := &Form{
		backend: backend,
		logger:  logger,
		prefix:  DefaultNumberPrefix,
		errors:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load 以快照初始化表单：并发拉取四个类型目录，
// 楼层非空时再拉取楼层与楼宇上下文，全部就绪后表单才可交互。
func (f *Form) Load(ctx context.Context, snap Snapshot) error {
	g, gctx := errgroup.WithContext(ctx)

	var (
		roomTypes, spaceTypes, hallTypes []TypeOption
		utilityTypes                     []UtilityOption
		lvlCtx                           *levelContext
	)

	g.Go(func() error {
		var err error
		roomTypes, err = f.backend.ListRoomTypes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		spaceTypes, err = f.backend.ListSpaceTypes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		hallTypes, err = f.backend.ListHallTypes(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		utilityTypes, err = f.backend.ListUtilityTypes(gctx)
		return err
	})
	if snap.LevelID != "" {
		g.Go(func() error {
			var err error
			lvlCtx, err = f.fetchLevelContext(gctx, snap.LevelID, snap, "")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.snapshot = snap
	f.roomTypes = roomTypes
	f.spaceTypes = spaceTypes
	f.hallTypes = hallTypes
	f.utilityTypes = utilityTypes
	f.snapCtx = lvlCtx
	if lvlCtx != nil {
		f.origBuildingID = lvlCtx.building.ID
	}

	f.resetToSnapshotLocked()
	f.loaded = true
	return nil
}

// resetToSnapshotLocked 把本地状态恢复为快照（Load 与 Cancel 公用）。
// current 集合总是新分配，绝不与 original 共享引用。
func (f *Form) resetToSnapshotLocked() {
	snap := f.snapshot

	f.unitNumber = NormalizeUnitNumber(f.prefix, snap.UnitNumber)
	f.unitType = snap.UnitType
	f.roomTypeID = snap.RoomTypeID
	f.spaceTypeID = snap.SpaceTypeID
	f.hallTypeID = snap.HallTypeID
	f.unitSpace = strconv.FormatFloat(snap.UnitSpace, 'f', -1, 64)
	f.rentalFee = strconv.FormatFloat(snap.RentalFee, 'f', -1, 64)
	f.hasMeter = snap.HasMeter
	f.levelID = snap.LevelID

	// 源数据中的重复 ID 在集合化时自动坍缩
	f.originalUtilities = make(map[string]struct{}, len(snap.UtilityTypeIDs))
	f.currentUtilities = make(map[string]struct{}, len(snap.UtilityTypeIDs))
	for _, id := range snap.UtilityTypeIDs {
		f.originalUtilities[id] = struct{}{}
		f.currentUtilities[id] = struct{}{}
	}

	for _, img := range f.stagedImages {
		img.release()
	}
	f.existingImages = append([]RemoteImage(nil), snap.Images...)
	f.stagedImages = nil
	f.removedImages = nil

	if f.snapCtx != nil {
		f.level = f.snapCtx.level
		f.building = f.snapCtx.building
		f.levelUnitCount = f.snapCtx.unitCount
		f.buildingUsedArea = f.snapCtx.usedArea
	} else {
		f.level = nil
		f.building = nil
		f.levelUnitCount = 0
		f.buildingUsedArea = 0
	}

	f.errors = make(map[string]string)
	f.duplicateNumber = false
	f.checkGen++ // 使在途唯一性检查的响应作废
	f.checking = false
	f.checkDone = nil
}

// Cancel 丢弃全部本地修改，恢复打开时的快照
func (f *Form) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetToSnapshotLocked()
}

// Errors 返回当前字段错误表的副本
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// RoomTypes 返回房间类型选项
func (f *Form) RoomTypes() []TypeOption { return f.roomTypes }

// SpaceTypes 返回空间类型选项
func (f *Form) SpaceTypes() []TypeOption { return f.spaceTypes }

// HallTypes 返回活动厅类型选项
func (f *Form) HallTypes() []TypeOption { return f.hallTypes }

// UtilityTypes 返回计费项目选项
func (f *Form) UtilityTypes() []UtilityOption { return f.utilityTypes }

// Checking 唯一性检查是否进行中（进行中时编号/楼层字段禁用）
func (f *Form) Checking() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checking
}

// UnitNumber 当前编号值
func (f *Form) UnitNumber() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unitNumber
}

// UnitType 当前单元类型
func (f *Form) UnitType() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unitType
}
