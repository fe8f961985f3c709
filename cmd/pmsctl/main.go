package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bitfantasy/nimo-pms/internal/client"
	"github.com/bitfantasy/nimo-pms/internal/config"
	"github.com/bitfantasy/nimo-pms/internal/unitform"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const usage = `pmsctl - PMS 运维命令行

用法:
  pmsctl unit get <id>
  pmsctl unit list [-level id] [-building id] [-keyword s]
  pmsctl unit check -number UN-007 -level <levelId> [-exclude <unitId>]
  pmsctl unit edit <id> [flags]
  pmsctl report occupancy [-format xlsx|pdf] [-o file]
  pmsctl report billing -period YYYY-MM [-format xlsx|pdf] [-o file]

环境变量: PMS_SERVER, PMS_TOKEN（.env 亦可）
`

func main() {
	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if len(os.Args) < 3 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	server := config.GetEnvOrDefault("PMS_SERVER", "http://localhost:8080")
	token := os.Getenv("PMS_TOKEN")
	c := client.New(server, token, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var runErr error
	switch os.Args[1] + " " + os.Args[2] {
	case "unit get":
		runErr = unitGet(ctx, c, os.Args[3:])
	case "unit list":
		runErr = unitList(ctx, c, os.Args[3:])
	case "unit check":
		runErr = unitCheck(ctx, c, os.Args[3:])
	case "unit edit":
		runErr = unitEdit(ctx, c, logger, os.Args[3:])
	case "report occupancy":
		runErr = reportOccupancy(ctx, c, os.Args[3:])
	case "report billing":
		runErr = reportBilling(ctx, c, os.Args[3:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, "error:", runErr)
		os.Exit(1)
	}
}

// stringList 可重复 flag
type stringList []string

func (s *stringList) String() string { return fmt.Sprint([]string(*s)) }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func unitGet(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("unit id is required")
	}
	unit, err := c.GetUnit(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(unit)
}

func unitList(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("unit list", flag.ExitOnError)
	levelID := fs.String("level", "", "filter by level id")
	buildingID := fs.String("building", "", "filter by building id")
	keyword := fs.String("keyword", "", "filter by unit number keyword")
	_ = fs.Parse(args)

	page, err := c.SearchUnits(ctx, client.UnitQuery{
		LevelID:    *levelID,
		BuildingID: *buildingID,
		Keyword:    *keyword,
		PageSize:   100,
	})
	if err != nil {
		return err
	}
	for _, u := range page.Items {
		fmt.Printf("%s\t%s\t%s\t%.2f sqm\t%.2f\n", u.ID, u.UnitNumber, u.UnitType, u.UnitSpace, u.RentalFee)
	}
	fmt.Printf("total: %d\n", page.Pagination.Total)
	return nil
}

func unitCheck(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("unit check", flag.ExitOnError)
	number := fs.String("number", "", "unit number")
	levelID := fs.String("level", "", "level id")
	exclude := fs.String("exclude", "", "unit id to exclude")
	_ = fs.Parse(args)
	if *number == "" || *levelID == "" {
		return fmt.Errorf("-number and -level are required")
	}

	exists, err := c.CheckUnitNumber(ctx, *number, *levelID, *exclude)
	if err != nil {
		return err
	}
	fmt.Printf("exists: %v\n", exists)
	return nil
}

// unitEdit 通过表单引擎编辑单元：加载快照、套用变更、校验后提交。
// 不带任何变更 flag 时仅打印当前表单状态。
func unitEdit(ctx context.Context, c *client.Client, logger *zap.Logger, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("unit id is required")
	}
	unitID := args[0]

	fs := flag.NewFlagSet("unit edit", flag.ExitOnError)
	number := fs.String("number", "", "new unit number")
	levelID := fs.String("level", "", "move to level id")
	space := fs.String("space", "", "unit space in sqm")
	fee := fs.String("fee", "", "monthly rental fee")
	meter := fs.String("meter", "", "has meter: true|false")
	unitType := fs.String("type", "", "unit type: ROOM|SPACE|HALL")
	typeRef := fs.String("type-ref", "", "room/space/hall type id")
	var toggles, addImages, removeImages stringList
	fs.Var(&toggles, "toggle-utility", "toggle a utility type id (repeatable)")
	fs.Var(&addImages, "add-image", "stage an image file (repeatable)")
	fs.Var(&removeImages, "remove-image", "mark an existing image url for removal (repeatable)")
	_ = fs.Parse(args[1:])

	detail, err := c.GetUnit(ctx, unitID)
	if err != nil {
		return err
	}

	form := unitform.New(client.NewFormBackend(c), logger)
	if err := form.Load(ctx, detail.Snapshot()); err != nil {
		return err
	}

	if *unitType != "" {
		form.SetUnitType(*unitType)
	}
	if *typeRef != "" {
		applyTypeRef(form, *typeRef)
	}
	if *space != "" {
		form.SetUnitSpace(*space)
	}
	if *fee != "" {
		form.SetRentalFee(*fee)
	}
	if *meter != "" {
		hasMeter, err := strconv.ParseBool(*meter)
		if err != nil {
			return fmt.Errorf("-meter must be true or false")
		}
		form.SetHasMeter(hasMeter)
	}
	if *levelID != "" {
		if err := form.SetLevel(ctx, *levelID); err != nil {
			return err
		}
	}
	if *number != "" {
		form.EditUnitNumber(*number, len(*number))
		form.BlurUnitNumber(ctx)
	}
	for _, id := range toggles {
		form.ToggleUtility(id)
	}
	for _, url := range removeImages {
		if !form.MarkImageForRemoval(url) {
			return fmt.Errorf("image url not found on unit: %s", url)
		}
	}
	for _, path := range addImages {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := form.StageImages(unitform.StagedImage{
			FileName: filepath.Base(path),
			Content:  content,
		}); err != nil {
			return err
		}
	}

	if !form.HasChanges() {
		fmt.Println("no changes")
		return printJSON(map[string]any{
			"unitNumber": form.UnitNumber(),
			"utilities":  form.CurrentUtilityIDs(),
			"errors":     form.Errors(),
		})
	}

	if err := form.Submit(ctx); err != nil {
		if vErr, ok := err.(*unitform.ValidationError); ok {
			return fmt.Errorf("validation failed: %v", vErr.Fields)
		}
		return err
	}

	added, removed := form.UtilityDiff()
	fmt.Printf("unit %s updated (utilities +%d -%d, images +%d -%d)\n",
		unitID, len(added), len(removed), len(addImages), len(removeImages))
	return nil
}

// applyTypeRef 按表单当前单元类型归属 type-ref；
// 未用 -type 改类型时即为单元原类型。
func applyTypeRef(form *unitform.Form, typeRef string) {
	switch form.UnitType() {
	case "SPACE":
		form.SetSpaceTypeID(typeRef)
	case "HALL":
		form.SetHallTypeID(typeRef)
	default:
		form.SetRoomTypeID(typeRef)
	}
}

func reportOccupancy(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("report occupancy", flag.ExitOnError)
	format := fs.String("format", "xlsx", "xlsx or pdf")
	out := fs.String("o", "", "output file")
	_ = fs.Parse(args)

	data, err := c.DownloadOccupancyReport(ctx, *format)
	if err != nil {
		return err
	}
	target := *out
	if target == "" {
		target = fmt.Sprintf("occupancy-%s.%s", time.Now().Format("20060102"), *format)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return err
	}
	fmt.Println("written:", target)
	return nil
}

func reportBilling(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("report billing", flag.ExitOnError)
	period := fs.String("period", "", "billing period YYYY-MM")
	format := fs.String("format", "xlsx", "xlsx or pdf")
	out := fs.String("o", "", "output file")
	_ = fs.Parse(args)
	if *period == "" {
		return fmt.Errorf("-period is required")
	}

	data, err := c.DownloadBillingReport(ctx, *period, *format)
	if err != nil {
		return err
	}
	target := *out
	if target == "" {
		target = fmt.Sprintf("billing-%s.%s", *period, *format)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return err
	}
	fmt.Println("written:", target)
	return nil
}
