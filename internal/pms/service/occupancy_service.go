package service

import (
	"context"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/pms/entity"
	"github.com/bitfantasy/nimo-pms/internal/pms/repository"
	"golang.org/x/sync/errgroup"
)

// OccupancyService 入住率统计服务
type OccupancyService struct {
	buildingRepo *repository.BuildingRepository
	levelRepo    *repository.LevelRepository
	unitRepo     *repository.UnitRepository
	contractRepo *repository.ContractRepository
}

// NewOccupancyService 创建入住率服务
func NewOccupancyService(
	buildingRepo *repository.BuildingRepository,
	levelRepo *repository.LevelRepository,
	unitRepo *repository.UnitRepository,
	contractRepo *repository.ContractRepository,
) *OccupancyService {
	return &OccupancyService{
		buildingRepo: buildingRepo,
		levelRepo:    levelRepo,
		unitRepo:     unitRepo,
		contractRepo: contractRepo,
	}
}

// LevelOccupancy 楼层入住情况
type LevelOccupancy struct {
	LevelID       string  `json:"level_id"`
	LevelName     string  `json:"level_name"`
	TotalUnits    int     `json:"total_units"`
	OccupiedUnits int     `json:"occupied_units"`
	VacantUnits   int     `json:"vacant_units"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// BuildingOccupancy 楼宇入住情况
type BuildingOccupancy struct {
	BuildingID    string           `json:"building_id"`
	BuildingCode  string           `json:"building_code"`
	BuildingName  string           `json:"building_name"`
	TotalUnits    int              `json:"total_units"`
	OccupiedUnits int              `json:"occupied_units"`
	OccupancyRate float64          `json:"occupancy_rate"`
	LeasableArea  *float64         `json:"leasable_area,omitempty"`
	UsedArea      float64          `json:"used_area"`
	Levels        []LevelOccupancy `json:"levels"`
}

// OccupancyReport 全量入住率报表
type OccupancyReport struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Buildings   []BuildingOccupancy `json:"buildings"`
}

// Report 生成入住率报表，各楼宇并发汇总
func (s *OccupancyService) Report(ctx context.Context) (*OccupancyReport, error) {
	buildings, err := s.buildingRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &OccupancyReport{
		GeneratedAt: time.Now(),
		Buildings:   make([]BuildingOccupancy, len(buildings)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := range buildings {
		i := i
		g.Go(func() error {
			row, err := s.buildingOccupancy(gctx, &buildings[i])
			if err != nil {
				return err
			}
			mu.Lock()
			report.Buildings[i] = *row
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *OccupancyService) buildingOccupancy(ctx context.Context, building *entity.Building) (*BuildingOccupancy, error) {
	row := &BuildingOccupancy{
		BuildingID:   building.ID,
		BuildingCode: building.Code,
		BuildingName: building.Name,
		LeasableArea: building.TotalLeasableArea,
	}

	used, err := s.unitRepo.SumSpaceByBuilding(ctx, building.ID, "")
	if err != nil {
		return nil, err
	}
	row.UsedArea = used

	levels, err := s.levelRepo.ListByBuilding(ctx, building.ID)
	if err != nil {
		return nil, err
	}

	today := time.Now()
	for _, level := range levels {
		units, _, err := s.unitRepo.List(ctx, repository.UnitFilter{LevelID: level.ID}, 1, 1000)
		if err != nil {
			return nil, err
		}
		unitIDs := make([]string, len(units))
		for j, u := range units {
			unitIDs[j] = u.ID
		}
		occupied, err := s.contractRepo.CountActiveByUnitIDs(ctx, unitIDs, today)
		if err != nil {
			return nil, err
		}

		lv := LevelOccupancy{
			LevelID:       level.ID,
			LevelName:     level.Name,
			TotalUnits:    len(units),
			OccupiedUnits: int(occupied),
			VacantUnits:   len(units) - int(occupied),
		}
		if lv.TotalUnits > 0 {
			lv.OccupancyRate = float64(lv.OccupiedUnits) / float64(lv.TotalUnits)
		}
		row.Levels = append(row.Levels, lv)
		row.TotalUnits += lv.TotalUnits
		row.OccupiedUnits += lv.OccupiedUnits
	}
	if row.TotalUnits > 0 {
		row.OccupancyRate = float64(row.OccupiedUnits) / float64(row.TotalUnits)
	}
	return row, nil
}
