package runtime

import (
	"bytes"

	"github.com/iov-one/tokenvm"
	"github.com/iov-one/tokenvm/errors"
)

// frame tracks the accounts of one program invocation so that the changes
// it made can be checked against its privileges.
type frame struct {
	programID tokenvm.Address
	// One view per address, writable if any view passed was.
	infos    []*tokenvm.AccountInfo
	writable map[tokenvm.Address]bool
	pre      map[tokenvm.Address]*tokenvm.Account
}

func newFrame(programID tokenvm.Address, infos []*tokenvm.AccountInfo) *frame {
	f := &frame{
		programID: programID,
		writable:  make(map[tokenvm.Address]bool, len(infos)),
		pre:       make(map[tokenvm.Address]*tokenvm.Account, len(infos)),
	}
	seen := make(map[tokenvm.Address]bool, len(infos))
	for _, info := range infos {
		if info.IsWritable {
			f.writable[info.Address] = true
		}
		if seen[info.Address] {
			continue
		}
		seen[info.Address] = true
		f.infos = append(f.infos, info)
	}
	f.snapshot()
	return f
}

// snapshot records the current state as the reference for the next verify.
func (f *frame) snapshot() {
	for _, info := range f.infos {
		f.pre[info.Address] = info.Snapshot()
	}
}

// verify checks every change made since the last snapshot:
//  - executable accounts never change,
//  - owner and data change only on writable accounts owned by the program,
//  - lamports are debited only from writable accounts owned by the program
//    and credited only to writable accounts,
//  - the sum of lamports is preserved.
func (f *frame) verify() error {
	var preSum, postSum uint64
	for _, info := range f.infos {
		pre := f.pre[info.Address]
		post := info.Snapshot()
		writable := f.writable[info.Address]
		owned := pre.Owner == f.programID

		preSum += pre.Lamports
		postSum += post.Lamports

		if pre.Executable {
			if !pre.Equal(post) {
				return errors.Wrapf(errors.ErrReadonlyModified, "executable %s", info.Address)
			}
			continue
		}
		if post.Executable {
			return errors.Wrapf(errors.ErrReadonlyModified, "%s cannot become executable", info.Address)
		}
		if pre.Owner != post.Owner && !(writable && owned) {
			return errors.Wrapf(errors.ErrIllegalOwner, "owner of %s changed by %s", info.Address, f.programID)
		}
		if !bytes.Equal(pre.Data, post.Data) && !(writable && owned) {
			return errors.Wrapf(errors.ErrReadonlyModified, "data of %s changed by %s", info.Address, f.programID)
		}
		switch {
		case post.Lamports < pre.Lamports && !(writable && owned):
			return errors.Wrapf(errors.ErrReadonlyModified, "lamports of %s debited by %s", info.Address, f.programID)
		case post.Lamports > pre.Lamports && !writable:
			return errors.Wrapf(errors.ErrReadonlyModified, "lamports of readonly %s credited", info.Address)
		}
	}
	if preSum != postSum {
		return errors.Wrapf(errors.ErrUnbalancedInstruction, "%d before, %d after", preSum, postSum)
	}
	return nil
}
