package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"ecshop/internal/domain/feed"
	"ecshop/internal/domain/model"
	"ecshop/internal/domain/task"
	repo "ecshop/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 取込エラーの分類（運用者向け）
type ImportErrorKind string

const (
	ImportFileNotFound   ImportErrorKind = "file_not_found"
	ImportFeedSyntax     ImportErrorKind = "feed_syntax"
	ImportDataValidation ImportErrorKind = "data_validation"
	ImportUnknown        ImportErrorKind = "unknown"
)

// 取込失敗。どの段階で失敗してもDBには何も残らない
type ImportError struct {
	Kind ImportErrorKind
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind.Describe(), e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

func (k ImportErrorKind) Describe() string {
	switch k {
	case ImportFileNotFound:
		return "file not found"
	case ImportFeedSyntax:
		return "feed syntax error"
	case ImportDataValidation:
		return "data error"
	default:
		return "unknown error"
	}
}

// HTTPのステータス
func (k ImportErrorKind) Status() int {
	switch k {
	case ImportFileNotFound:
		return http.StatusNotFound
	case ImportFeedSyntax, ImportDataValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func AsImportError(err error) (*ImportError, bool) {
	var ie *ImportError
	ok := errors.As(err, &ie)
	return ie, ok
}

// フィードの読み込み（ファイル / URL）
type FeedLoader interface {
	Load(ctx context.Context, source string) ([]byte, error)
}

type ImportInput struct {
	Source string
	// 0ならシステム実行（CLI・定期実行）で監査ログは残さない
	ActorUserID int64
}

type ImportResult struct {
	ShopID                   int64  `json:"shop_id"`
	Shop                     string `json:"shop"`
	ShopCreated              bool   `json:"shop_created"`
	Categories               int    `json:"categories"`
	CategoriesCreated        int    `json:"categories_created"`
	Goods                    int    `json:"goods"`
	ProductsCreated          int    `json:"products_created"`
	ProductInfosCreated      int    `json:"product_infos_created"`
	ParametersCreated        int    `json:"parameters_created"`
	ProductParametersCreated int    `json:"product_parameters_created"`
}

type CatalogImportUsecase struct {
	tx          repo.TransactionManager
	loader      FeedLoader
	q           TaskEnqueuer
	urlTemplate string
	log         *zap.Logger
}

// DI
func NewCatalogImportUsecase(
	tx repo.TransactionManager,
	loader FeedLoader,
	q TaskEnqueuer,
	urlTemplate string,
	log *zap.Logger,
) *CatalogImportUsecase {
	if urlTemplate == "" {
		urlTemplate = "https://%s.ru"
	}
	return &CatalogImportUsecase{
		tx:          tx,
		loader:      loader,
		q:           q,
		urlTemplate: urlTemplate,
		log:         log.Named("import"),
	}
}

// Import はフィードを読み込み、1トランザクションでカタログに反映する
func (u *CatalogImportUsecase) Import(ctx context.Context, in ImportInput) (ImportResult, error) {
	source := strings.TrimSpace(in.Source)
	if source == "" {
		return ImportResult{}, &ImportError{Kind: ImportDataValidation, Err: errors.New("source is required")}
	}

	data, err := u.loader.Load(ctx, source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ImportResult{}, &ImportError{Kind: ImportFileNotFound, Err: err}
		}
		return ImportResult{}, &ImportError{Kind: ImportUnknown, Err: err}
	}

	doc, err := feed.Parse(data)
	if err != nil {
		if errors.Is(err, feed.ErrSyntax) {
			return ImportResult{}, &ImportError{Kind: ImportFeedSyntax, Err: err}
		}
		return ImportResult{}, &ImportError{Kind: ImportDataValidation, Err: err}
	}

	res, err := u.ImportDocument(ctx, doc, in.ActorUserID)
	if err != nil {
		u.log.Error("import failed", zap.String("source", source), zap.Error(err))
		return ImportResult{}, err
	}

	u.log.Info("import finished",
		zap.String("source", source),
		zap.String("shop", res.Shop),
		zap.Int("goods", res.Goods),
		zap.Int("products_created", res.ProductsCreated),
		zap.Int("product_infos_created", res.ProductInfosCreated),
	)
	return res, nil
}

// ImportAsync は取込ジョブを積んでIDを返す。結果はワーカー側のログに出る
func (u *CatalogImportUsecase) ImportAsync(ctx context.Context, in ImportInput) (string, error) {
	source := strings.TrimSpace(in.Source)
	if source == "" {
		return "", NewValidationError(map[string]string{"source": "required"})
	}

	t, err := task.New(task.TypeCatalogImport, task.ImportPayload{Source: source, ActorUserID: in.ActorUserID})
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := u.q.Enqueue(ctx, t); err != nil {
		u.log.Error("enqueue import task", zap.String("source", source), zap.Error(err))
		return "", NewHTTPError(http.StatusServiceUnavailable, "queue unavailable")
	}
	return t.ID, nil
}

// ShopURL は新規ショップのURLを名前から作る
func (u *CatalogImportUsecase) ShopURL(name string) string {
	slug := cases.Lower(language.Und).String(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return fmt.Sprintf(u.urlTemplate, slug)
}

// ImportDocument はパース済みフィードを反映する。
// 既存の行はget-or-createで再利用し、価格・在庫は新規作成時だけ設定する
func (u *CatalogImportUsecase) ImportDocument(ctx context.Context, doc feed.Document, actorUserID int64) (ImportResult, error) {
	var res ImportResult

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		res = ImportResult{}

		shop, created, err := r.Shops().GetOrCreateByName(ctx, doc.Shop, u.ShopURL(doc.Shop))
		if err != nil {
			return fmt.Errorf("shop %q: %w", doc.Shop, err)
		}
		res.ShopID, res.Shop, res.ShopCreated = shop.ID, shop.Name, created

		// フィード内で宣言されたカテゴリだけ参照できる
		declared := make(map[int64]model.Category, len(doc.Categories))
		for _, c := range doc.Categories {
			cat, created, err := r.Categories().GetOrCreate(ctx, c.ID, c.Name)
			if err != nil {
				return fmt.Errorf("category %d: %w", c.ID, err)
			}
			if err := r.Shops().AddCategory(ctx, shop.ID, cat.ID); err != nil {
				return fmt.Errorf("link category %d: %w", c.ID, err)
			}
			declared[c.ID] = cat
			res.Categories++
			if created {
				res.CategoriesCreated++
			}
		}

		for i, g := range doc.Goods {
			cat, ok := declared[g.Category]
			if !ok {
				return &ImportError{
					Kind: ImportDataValidation,
					Err:  fmt.Errorf("goods[%d] %q: undeclared category id %d", i, g.Name, g.Category),
				}
			}

			product, created, err := r.Products().GetOrCreateByName(ctx, g.Name, cat.ID)
			if err != nil {
				return fmt.Errorf("product %q: %w", g.Name, err)
			}
			if created {
				res.ProductsCreated++
			}

			info, created, err := r.ProductInfos().GetOrCreate(ctx, model.ProductInfo{
				ProductID: product.ID,
				ShopID:    shop.ID,
				Name:      g.Name,
				Quantity:  *g.Quantity,
				Price:     g.Price.Value,
				PriceRRC:  g.PriceRRC.Value,
			})
			if err != nil {
				return fmt.Errorf("product info %q: %w", g.Name, err)
			}
			if created {
				res.ProductInfosCreated++
			}

			for _, name := range g.ParameterNames() {
				param, created, err := r.Parameters().GetOrCreateByName(ctx, name)
				if err != nil {
					return fmt.Errorf("parameter %q: %w", name, err)
				}
				if created {
					res.ParametersCreated++
				}
				_, created, err = r.Parameters().GetOrCreateValue(ctx, info.ID, param.ID, string(g.Parameters[name]))
				if err != nil {
					return fmt.Errorf("parameter value %q: %w", name, err)
				}
				if created {
					res.ProductParametersCreated++
				}
			}
			res.Goods++
		}

		if actorUserID > 0 {
			after, _ := json.Marshal(res)
			if err := r.AuditLogs().Create(ctx, model.AuditLog{
				ActorUserID:  actorUserID,
				Action:       model.AuditActionImportCatalog,
				ResourceType: model.AuditResourceShop,
				ResourceID:   shop.ID,
				AfterJSON:    string(after),
				CreatedAt:    time.Now(),
			}); err != nil {
				return fmt.Errorf("audit log: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := AsImportError(err); ok {
			return ImportResult{}, err
		}
		return ImportResult{}, &ImportError{Kind: ImportUnknown, Err: err}
	}
	return res, nil
}
